// Package vulkan creates render targets whose memory can be exported as file
// descriptors and renders camera passes into them.
// This package uses CGO to interface with the Vulkan C API.
package vulkan

// #cgo linux LDFLAGS: -lvulkan
// #include <vulkan/vulkan.h>
import "C"

import (
	"fmt"

	"render-bridge/log"
)

var logger = log.New("vulkan")

// VulkanVersion11 is the lowest device API version that can export memory.
const VulkanVersion11 = C.VK_API_VERSION_1_1

// ExternalMemoryFdExtension must be supported by the selected device.
const ExternalMemoryFdExtension = "VK_KHR_external_memory_fd"

// NoTimeout waits forever on fences.
const NoTimeout = ^uint64(0)

func VK_MAKE_VERSION(major, minor, patch uint32) uint32 {
	return (major << 22) | (minor << 12) | patch
}

// VersionString renders a packed Vulkan API version.
func VersionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
