package vulkan

/*
#include <vulkan/vulkan.h>
#include <string.h>

static void bridgeBeginClearPass(VkCommandBuffer cmd, VkRenderPass renderPass, VkFramebuffer framebuffer,
                                 uint32_t width, uint32_t height, float r, float g, float b, float a) {
    VkClearValue clear;
    memset(&clear, 0, sizeof(clear));
    clear.color.float32[0] = r;
    clear.color.float32[1] = g;
    clear.color.float32[2] = b;
    clear.color.float32[3] = a;

    VkRenderPassBeginInfo info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_RENDER_PASS_BEGIN_INFO;
    info.renderPass = renderPass;
    info.framebuffer = framebuffer;
    info.renderArea.extent.width = width;
    info.renderArea.extent.height = height;
    info.clearValueCount = 1;
    info.pClearValues = &clear;

    vkCmdBeginRenderPass(cmd, &info, VK_SUBPASS_CONTENTS_INLINE);
}
*/
import "C"
import (
	"fmt"

	"render-bridge/core"
	"render-bridge/frame"
)

type CommandBuffer struct {
	Handle C.VkCommandBuffer
}

func AllocateCommandBuffer(device *Device) (*CommandBuffer, error) {
	allocInfo := C.VkCommandBufferAllocateInfo{
		sType:              C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_ALLOCATE_INFO,
		commandPool:        device.CommandPool,
		level:              C.VK_COMMAND_BUFFER_LEVEL_PRIMARY,
		commandBufferCount: 1,
	}

	cb := &CommandBuffer{}
	result := C.vkAllocateCommandBuffers(device.Device, &allocInfo, &cb.Handle)
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to allocate command buffer: %d", result)
	}
	return cb, nil
}

func (cb *CommandBuffer) Free(device *Device) {
	if cb.Handle != nil {
		C.vkFreeCommandBuffers(device.Device, device.CommandPool, 1, &cb.Handle)
		cb.Handle = nil
	}
}

func (cb *CommandBuffer) Reset() error {
	result := C.vkResetCommandBuffer(cb.Handle, 0)
	if result != C.VK_SUCCESS {
		return fmt.Errorf("failed to reset command buffer: %d", result)
	}
	return nil
}

func (cb *CommandBuffer) Begin(oneTime bool) error {
	beginInfo := C.VkCommandBufferBeginInfo{
		sType: C.VK_STRUCTURE_TYPE_COMMAND_BUFFER_BEGIN_INFO,
	}

	if oneTime {
		beginInfo.flags = C.VK_COMMAND_BUFFER_USAGE_ONE_TIME_SUBMIT_BIT
	}

	result := C.vkBeginCommandBuffer(cb.Handle, &beginInfo)
	if result != C.VK_SUCCESS {
		return fmt.Errorf("failed to begin recording command buffer: %d", result)
	}
	return nil
}

func (cb *CommandBuffer) End() error {
	result := C.vkEndCommandBuffer(cb.Handle)
	if result != C.VK_SUCCESS {
		return fmt.Errorf("failed to end recording command buffer: %d", result)
	}
	return nil
}

// BeginClearPass starts renderPass on framebuffer, clearing it to color.
func (cb *CommandBuffer) BeginClearPass(renderPass C.VkRenderPass, framebuffer C.VkFramebuffer, size frame.Size, color core.Color) {
	C.bridgeBeginClearPass(cb.Handle, renderPass, framebuffer,
		C.uint32_t(size.Width), C.uint32_t(size.Height),
		C.float(color.R), C.float(color.G), C.float(color.B), C.float(color.A))
}

func (cb *CommandBuffer) EndRenderPass() {
	C.vkCmdEndRenderPass(cb.Handle)
}
