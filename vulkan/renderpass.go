package vulkan

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"fmt"
	"unsafe"

	"render-bridge/surface"
)

// TargetFormat is the pixel format of every exported render target.
const TargetFormat = C.VK_FORMAT_R8G8B8A8_SRGB

// TargetFourcc is the DRM fourcc describing TargetFormat's memory layout.
func TargetFourcc() uint32 {
	return drmFourcc(TargetFormat)
}

// drmFourcc maps a colour format to the DRM fourcc with the same byte order,
// or 0 when the bridge cannot describe it.
func drmFourcc(format C.VkFormat) uint32 {
	switch format {
	case C.VK_FORMAT_R8G8B8A8_SRGB, C.VK_FORMAT_R8G8B8A8_UNORM:
		return surface.FourccABGR8888
	}
	return 0
}

// CreateRenderPass creates a single-subpass colour pass for exported targets.
// The attachment ends in VK_IMAGE_LAYOUT_GENERAL so the importing API can read
// it without a further transition.
func CreateRenderPass(device *Device, format C.VkFormat) (C.VkRenderPass, error) {
	// Attachment description - in C memory
	colorAttach := (*C.VkAttachmentDescription)(C.calloc(1, C.size_t(unsafe.Sizeof(C.VkAttachmentDescription{}))))
	defer C.free(unsafe.Pointer(colorAttach))
	colorAttach.format = format
	colorAttach.samples = C.VK_SAMPLE_COUNT_1_BIT
	colorAttach.loadOp = C.VK_ATTACHMENT_LOAD_OP_CLEAR
	colorAttach.storeOp = C.VK_ATTACHMENT_STORE_OP_STORE
	colorAttach.stencilLoadOp = C.VK_ATTACHMENT_LOAD_OP_DONT_CARE
	colorAttach.stencilStoreOp = C.VK_ATTACHMENT_STORE_OP_DONT_CARE
	colorAttach.initialLayout = C.VK_IMAGE_LAYOUT_UNDEFINED
	colorAttach.finalLayout = C.VK_IMAGE_LAYOUT_GENERAL

	colorAttachRef := (*C.VkAttachmentReference)(C.calloc(1, C.size_t(unsafe.Sizeof(C.VkAttachmentReference{}))))
	defer C.free(unsafe.Pointer(colorAttachRef))
	colorAttachRef.attachment = 0
	colorAttachRef.layout = C.VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL

	subpass := (*C.VkSubpassDescription)(C.calloc(1, C.size_t(unsafe.Sizeof(C.VkSubpassDescription{}))))
	defer C.free(unsafe.Pointer(subpass))
	subpass.pipelineBindPoint = C.VK_PIPELINE_BIND_POINT_GRAPHICS
	subpass.colorAttachmentCount = 1
	subpass.pColorAttachments = colorAttachRef

	// One dependency in, one out to whoever samples the exported memory.
	dependencies := (*[2]C.VkSubpassDependency)(C.calloc(2, C.size_t(unsafe.Sizeof(C.VkSubpassDependency{}))))
	defer C.free(unsafe.Pointer(dependencies))
	dependencies[0].srcSubpass = C.VK_SUBPASS_EXTERNAL
	dependencies[0].dstSubpass = 0
	dependencies[0].srcStageMask = C.VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT
	dependencies[0].srcAccessMask = 0
	dependencies[0].dstStageMask = C.VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT
	dependencies[0].dstAccessMask = C.VK_ACCESS_COLOR_ATTACHMENT_WRITE_BIT
	dependencies[1].srcSubpass = 0
	dependencies[1].dstSubpass = C.VK_SUBPASS_EXTERNAL
	dependencies[1].srcStageMask = C.VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT
	dependencies[1].srcAccessMask = C.VK_ACCESS_COLOR_ATTACHMENT_WRITE_BIT
	dependencies[1].dstStageMask = C.VK_PIPELINE_STAGE_BOTTOM_OF_PIPE_BIT
	dependencies[1].dstAccessMask = C.VK_ACCESS_MEMORY_READ_BIT

	renderPassInfo := (*C.VkRenderPassCreateInfo)(C.calloc(1, C.size_t(unsafe.Sizeof(C.VkRenderPassCreateInfo{}))))
	defer C.free(unsafe.Pointer(renderPassInfo))
	renderPassInfo.sType = C.VK_STRUCTURE_TYPE_RENDER_PASS_CREATE_INFO
	renderPassInfo.attachmentCount = 1
	renderPassInfo.pAttachments = colorAttach
	renderPassInfo.subpassCount = 1
	renderPassInfo.pSubpasses = subpass
	renderPassInfo.dependencyCount = 2
	renderPassInfo.pDependencies = &dependencies[0]

	var renderPass C.VkRenderPass
	result := C.vkCreateRenderPass(device.Device, renderPassInfo, nil, &renderPass)
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create render pass: %d", result)
	}

	return renderPass, nil
}

func DestroyRenderPass(device *Device, renderPass C.VkRenderPass) {
	C.vkDestroyRenderPass(device.Device, renderPass, nil)
}
