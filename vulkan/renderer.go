package vulkan

/*
#include <vulkan/vulkan.h>
#include <string.h>

static VkResult bridgeCreateFence(VkDevice device, VkFence* fence) {
    VkFenceCreateInfo info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_FENCE_CREATE_INFO;
    return vkCreateFence(device, &info, NULL, fence);
}

static VkResult bridgeSubmit(VkQueue queue, VkCommandBuffer cmd, VkFence fence) {
    VkSubmitInfo info;
    memset(&info, 0, sizeof(info));
    info.sType = VK_STRUCTURE_TYPE_SUBMIT_INFO;
    info.commandBufferCount = 1;
    info.pCommandBuffers = &cmd;
    return vkQueueSubmit(queue, 1, &info, fence);
}

static VkResult bridgeWaitFence(VkDevice device, VkFence fence, uint64_t timeout) {
    return vkWaitForFences(device, 1, &fence, VK_TRUE, timeout);
}

static VkResult bridgeResetFence(VkDevice device, VkFence fence) {
    return vkResetFences(device, 1, &fence);
}
*/
import "C"
import (
	"fmt"

	"render-bridge/bridge"
	"render-bridge/target"
)

// Renderer records one clear pass per camera job into the exported targets
// and waits for the GPU before returning, so a target handed to the UI after
// Render is complete.
type Renderer struct {
	Device     *Device
	RenderPass C.VkRenderPass

	commandBuffer *CommandBuffer
	// done is signalled when a submitted pass finishes; unsignalled between
	// passes.
	done C.VkFence
}

func NewRenderer(exporter *Exporter) (*Renderer, error) {
	device := exporter.device

	cb, err := AllocateCommandBuffer(device)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		Device:        device,
		RenderPass:    exporter.renderPass,
		commandBuffer: cb,
	}
	if result := C.bridgeCreateFence(device.Device, &r.done); result != C.VK_SUCCESS {
		cb.Free(device)
		return nil, fmt.Errorf("failed to create fence: %d", result)
	}
	return r, nil
}

// submit runs the recorded command buffer and blocks until the GPU is done
// with it. The fence is reset for the next pass.
func (r *Renderer) submit() error {
	if result := C.bridgeSubmit(r.Device.GraphicsQueue, r.commandBuffer.Handle, r.done); result != C.VK_SUCCESS {
		return fmt.Errorf("failed to submit command buffer: %d", result)
	}
	if result := C.bridgeWaitFence(r.Device.Device, r.done, C.uint64_t(NoTimeout)); result != C.VK_SUCCESS {
		return fmt.Errorf("failed to wait for pass: %d", result)
	}
	if result := C.bridgeResetFence(r.Device.Device, r.done); result != C.VK_SUCCESS {
		logger.Errorf("render: failed to reset fence: %d", result)
	}
	return nil
}

// Render executes jobs and returns the error of each failed target, or nil
// when every target rendered.
func (r *Renderer) Render(jobs []bridge.Job) map[target.Handle]error {
	if len(jobs) == 0 {
		return nil
	}

	var failed map[target.Handle]error
	fail := func(h target.Handle, err error) {
		if failed == nil {
			failed = make(map[target.Handle]error)
		}
		failed[h] = err
	}

	if err := r.commandBuffer.Reset(); err != nil {
		return failAll(jobs, err)
	}
	if err := r.commandBuffer.Begin(true); err != nil {
		return failAll(jobs, err)
	}

	recorded := 0
	for _, job := range jobs {
		view, ok := job.View.(*TextureView)
		if !ok || view.shared.device != r.Device || !view.live() {
			fail(job.Target, fmt.Errorf("%w: camera %q", ErrForeignView, job.Camera))
			continue
		}
		r.commandBuffer.BeginClearPass(r.RenderPass, view.shared.framebuffer, view.Size(), job.Clear)
		r.commandBuffer.EndRenderPass()
		recorded++
	}

	if err := r.commandBuffer.End(); err != nil {
		return failAll(jobs, err)
	}
	if recorded == 0 {
		return failed
	}

	if err := r.submit(); err != nil {
		return failAll(jobs, err)
	}

	logger.Debugf("rendered %d passes", recorded)
	return failed
}

func failAll(jobs []bridge.Job, err error) map[target.Handle]error {
	failed := make(map[target.Handle]error, len(jobs))
	for _, job := range jobs {
		failed[job.Target] = err
	}
	return failed
}

func (r *Renderer) Destroy() {
	if r.done != nil {
		C.vkDestroyFence(r.Device.Device, r.done, nil)
		r.done = nil
	}
	if r.commandBuffer != nil {
		r.commandBuffer.Free(r.Device)
		r.commandBuffer = nil
	}
}
