package vulkan

/*
#include <vulkan/vulkan.h>
*/
import "C"
import (
	"fmt"
	"runtime"
	"sync/atomic"

	"render-bridge/frame"
)

// sharedTexture holds the native objects behind an exported render target.
// They are destroyed when the last TextureView referencing them is released.
type sharedTexture struct {
	device      *Device
	image       C.VkImage
	memory      C.VkDeviceMemory
	view        C.VkImageView
	framebuffer C.VkFramebuffer
	size        frame.Size
	refs        atomic.Int32
}

func (t *sharedTexture) destroy() {
	if t.framebuffer != nil {
		C.vkDestroyFramebuffer(t.device.Device, t.framebuffer, nil)
		t.framebuffer = nil
	}
	if t.view != nil {
		C.vkDestroyImageView(t.device.Device, t.view, nil)
		t.view = nil
	}
	if t.image != nil {
		C.vkDestroyImage(t.device.Device, t.image, nil)
		t.image = nil
	}
	if t.memory != nil {
		C.vkFreeMemory(t.device.Device, t.memory, nil)
		t.memory = nil
	}
}

// TextureView is one reference to an exported render target. Clone adds a
// reference, Release drops this one; both are safe from any goroutine.
type TextureView struct {
	shared   *sharedTexture
	released atomic.Bool
}

func newTextureView(t *sharedTexture) *TextureView {
	t.refs.Store(1)
	return &TextureView{shared: t}
}

func (v *TextureView) Clone() frame.View {
	v.shared.refs.Add(1)
	return &TextureView{shared: v.shared}
}

// Release drops this reference. Calling it twice on the same view is a no-op.
func (v *TextureView) Release() {
	if !v.released.CompareAndSwap(false, true) {
		return
	}
	if v.shared.refs.Add(-1) == 0 {
		v.shared.destroy()
	}
}

func (v *TextureView) Size() frame.Size {
	return v.shared.size
}

func (v *TextureView) live() bool {
	return !v.released.Load() && v.shared.refs.Load() > 0
}

func CreateImageView(device *Device, image C.VkImage, format C.VkFormat) (C.VkImageView, error) {
	viewInfo := C.VkImageViewCreateInfo{
		sType:    C.VK_STRUCTURE_TYPE_IMAGE_VIEW_CREATE_INFO,
		image:    image,
		viewType: C.VK_IMAGE_VIEW_TYPE_2D,
		format:   format,
		subresourceRange: C.VkImageSubresourceRange{
			aspectMask:     C.VK_IMAGE_ASPECT_COLOR_BIT,
			baseMipLevel:   0,
			levelCount:     1,
			baseArrayLayer: 0,
			layerCount:     1,
		},
	}

	var imageView C.VkImageView
	result := C.vkCreateImageView(device.Device, &viewInfo, nil, &imageView)
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create image view: %d", result)
	}

	return imageView, nil
}

func CreateFramebuffer(device *Device, renderPass C.VkRenderPass, view C.VkImageView, size frame.Size) (C.VkFramebuffer, error) {
	var pinner runtime.Pinner
	defer pinner.Unpin()

	attachments := []C.VkImageView{view}
	pinner.Pin(&attachments[0])

	framebufferInfo := C.VkFramebufferCreateInfo{
		sType:           C.VK_STRUCTURE_TYPE_FRAMEBUFFER_CREATE_INFO,
		renderPass:      renderPass,
		attachmentCount: C.uint32_t(len(attachments)),
		pAttachments:    &attachments[0],
		width:           C.uint32_t(size.Width),
		height:          C.uint32_t(size.Height),
		layers:          1,
	}

	var framebuffer C.VkFramebuffer
	result := C.vkCreateFramebuffer(device.Device, &framebufferInfo, nil, &framebuffer)
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create framebuffer: %d", result)
	}

	return framebuffer, nil
}
