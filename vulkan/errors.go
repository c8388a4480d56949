package vulkan

import "errors"

var (
	ErrNoDevice         = errors.New("vulkan: no suitable device found")
	ErrExtensionMissing = errors.New("vulkan: required device extension missing")
	ErrExportFailed     = errors.New("vulkan: render target export failed")
	ErrZeroSize         = errors.New("vulkan: render target has a zero extent")
	ErrForeignView      = errors.New("vulkan: view was not created by this device")
)
