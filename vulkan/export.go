package vulkan

/*
#include <vulkan/vulkan.h>
#include <string.h>

static VkResult bridgeCreateExportableImage(VkDevice device, uint32_t width, uint32_t height, VkFormat format, VkImage* image) {
    VkExternalMemoryImageCreateInfo external;
    memset(&external, 0, sizeof(external));
    external.sType = VK_STRUCTURE_TYPE_EXTERNAL_MEMORY_IMAGE_CREATE_INFO;
    external.handleTypes = VK_EXTERNAL_MEMORY_HANDLE_TYPE_OPAQUE_FD_BIT;

    VkImageCreateInfo info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_IMAGE_CREATE_INFO;
    info.pNext = &external;
    info.imageType = VK_IMAGE_TYPE_2D;
    info.format = format;
    info.extent.width = width;
    info.extent.height = height;
    info.extent.depth = 1;
    info.mipLevels = 1;
    info.arrayLayers = 1;
    info.samples = VK_SAMPLE_COUNT_1_BIT;
    info.tiling = VK_IMAGE_TILING_OPTIMAL;
    info.usage = VK_IMAGE_USAGE_COLOR_ATTACHMENT_BIT | VK_IMAGE_USAGE_TRANSFER_SRC_BIT;
    info.sharingMode = VK_SHARING_MODE_EXCLUSIVE;
    info.initialLayout = VK_IMAGE_LAYOUT_UNDEFINED;

    return vkCreateImage(device, &info, NULL, image);
}

static void bridgeImageMemoryRequirements(VkDevice device, VkImage image, VkMemoryRequirements* out, VkBool32* dedicated) {
    VkMemoryDedicatedRequirements dedicatedReqs;
    memset(&dedicatedReqs, 0, sizeof(dedicatedReqs));
    dedicatedReqs.sType = VK_STRUCTURE_TYPE_MEMORY_DEDICATED_REQUIREMENTS;

    VkMemoryRequirements2 reqs;
    memset(&reqs, 0, sizeof(reqs));
    reqs.sType = VK_STRUCTURE_TYPE_MEMORY_REQUIREMENTS_2;
    reqs.pNext = &dedicatedReqs;

    VkImageMemoryRequirementsInfo2 info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_IMAGE_MEMORY_REQUIREMENTS_INFO_2;
    info.image = image;

    vkGetImageMemoryRequirements2(device, &info, &reqs);
    *out = reqs.memoryRequirements;
    *dedicated = dedicatedReqs.prefersDedicatedAllocation | dedicatedReqs.requiresDedicatedAllocation;
}

static VkResult bridgeAllocateExportableMemory(VkDevice device, VkImage image, VkDeviceSize size, uint32_t memoryType, VkDeviceMemory* memory) {
    VkMemoryDedicatedAllocateInfo dedicated;
    memset(&dedicated, 0, sizeof(dedicated));
    dedicated.sType = VK_STRUCTURE_TYPE_MEMORY_DEDICATED_ALLOCATE_INFO;
    dedicated.image = image;

    VkExportMemoryAllocateInfo export;
    memset(&export, 0, sizeof(export));
    export.sType = VK_STRUCTURE_TYPE_EXPORT_MEMORY_ALLOCATE_INFO;
    export.pNext = &dedicated;
    export.handleTypes = VK_EXTERNAL_MEMORY_HANDLE_TYPE_OPAQUE_FD_BIT;

    VkMemoryAllocateInfo info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_MEMORY_ALLOCATE_INFO;
    info.pNext = &export;
    info.allocationSize = size;
    info.memoryTypeIndex = memoryType;

    return vkAllocateMemory(device, &info, NULL, memory);
}

static VkResult bridgeBindImageMemory(VkDevice device, VkImage image, VkDeviceMemory memory) {
    VkBindImageMemoryInfo info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_BIND_IMAGE_MEMORY_INFO;
    info.image = image;
    info.memory = memory;
    info.memoryOffset = 0;

    return vkBindImageMemory2(device, 1, &info);
}

static PFN_vkGetMemoryFdKHR bridgeLoadGetMemoryFd(VkDevice device) {
    return (PFN_vkGetMemoryFdKHR)vkGetDeviceProcAddr(device, "vkGetMemoryFdKHR");
}

static VkResult bridgeGetMemoryFd(PFN_vkGetMemoryFdKHR fn, VkDevice device, VkDeviceMemory memory, int* fd) {
    VkMemoryGetFdInfoKHR info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_MEMORY_GET_FD_INFO_KHR;
    info.memory = memory;
    info.handleType = VK_EXTERNAL_MEMORY_HANDLE_TYPE_OPAQUE_FD_BIT;

    return fn(device, &info, fd);
}
*/
import "C"
import (
	"fmt"

	"golang.org/x/sys/unix"

	"render-bridge/frame"
	"render-bridge/surface"
)

// Exporter creates render targets whose dedicated memory is exported as an
// opaque file descriptor.
type Exporter struct {
	device      *Device
	renderPass  C.VkRenderPass
	getMemoryFd C.PFN_vkGetMemoryFdKHR
}

func NewExporter(device *Device) (*Exporter, error) {
	if TargetFourcc() != surface.FourccABGR8888 {
		return nil, fmt.Errorf("%w: target format %d has no %s layout", ErrExportFailed,
			TargetFormat, surface.FourccString(surface.FourccABGR8888))
	}

	getMemoryFd := C.bridgeLoadGetMemoryFd(device.Device)
	if getMemoryFd == nil {
		return nil, fmt.Errorf("%w: vkGetMemoryFdKHR not available", ErrExtensionMissing)
	}

	renderPass, err := CreateRenderPass(device, TargetFormat)
	if err != nil {
		return nil, err
	}

	return &Exporter{
		device:      device,
		renderPass:  renderPass,
		getMemoryFd: getMemoryFd,
	}, nil
}

// Export creates a size.Width x size.Height colour target and exports its
// memory. The caller owns both the returned view reference and the fd. On
// error nothing is leaked and nothing is retried.
func (e *Exporter) Export(size frame.Size) (frame.View, frame.Memory, error) {
	if size.IsZero() {
		return nil, frame.Memory{}, fmt.Errorf("%w: %dx%d", ErrZeroSize, size.Width, size.Height)
	}

	tex := &sharedTexture{device: e.device, size: size}
	fd := C.int(-1)
	ok := false
	defer func() {
		if ok {
			return
		}
		if fd >= 0 {
			_ = unix.Close(int(fd))
		}
		tex.destroy()
	}()

	result := C.bridgeCreateExportableImage(e.device.Device, C.uint32_t(size.Width), C.uint32_t(size.Height), TargetFormat, &tex.image)
	if result != C.VK_SUCCESS {
		return nil, frame.Memory{}, fmt.Errorf("%w: failed to create image: %d", ErrExportFailed, result)
	}

	var memRequirements C.VkMemoryRequirements
	var dedicated C.VkBool32
	C.bridgeImageMemoryRequirements(e.device.Device, tex.image, &memRequirements, &dedicated)

	memType, err := e.device.FindMemoryType(uint32(memRequirements.memoryTypeBits), C.VK_MEMORY_PROPERTY_DEVICE_LOCAL_BIT)
	if err != nil {
		return nil, frame.Memory{}, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	result = C.bridgeAllocateExportableMemory(e.device.Device, tex.image, memRequirements.size, C.uint32_t(memType), &tex.memory)
	if result != C.VK_SUCCESS {
		return nil, frame.Memory{}, fmt.Errorf("%w: failed to allocate image memory: %d", ErrExportFailed, result)
	}

	result = C.bridgeBindImageMemory(e.device.Device, tex.image, tex.memory)
	if result != C.VK_SUCCESS {
		return nil, frame.Memory{}, fmt.Errorf("%w: failed to bind image memory: %d", ErrExportFailed, result)
	}

	result = C.bridgeGetMemoryFd(e.getMemoryFd, e.device.Device, tex.memory, &fd)
	if result != C.VK_SUCCESS {
		return nil, frame.Memory{}, fmt.Errorf("%w: failed to get memory fd: %d", ErrExportFailed, result)
	}

	tex.view, err = CreateImageView(e.device, tex.image, TargetFormat)
	if err != nil {
		return nil, frame.Memory{}, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	tex.framebuffer, err = CreateFramebuffer(e.device, e.renderPass, tex.view, size)
	if err != nil {
		return nil, frame.Memory{}, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	ok = true
	logger.Debugf("exported %dx%d %s target: fd %d, %d bytes, dedicated %t",
		size.Width, size.Height, surface.FourccString(TargetFourcc()), int(fd), uint64(memRequirements.size), dedicated == C.VK_TRUE)

	return newTextureView(tex), frame.Memory{
		FD:             int(fd),
		AllocationSize: uint64(memRequirements.size),
	}, nil
}

func (e *Exporter) Destroy() {
	if e.renderPass != nil {
		DestroyRenderPass(e.device, e.renderPass)
		e.renderPass = nil
	}
}
