package vulkan

/*
#include <vulkan/vulkan.h>
#include <stdlib.h>
#include <string.h>
#include <stdio.h>

static VKAPI_ATTR VkBool32 VKAPI_CALL bridgeDebugCallback(
    VkDebugUtilsMessageSeverityFlagBitsEXT messageSeverity,
    VkDebugUtilsMessageTypeFlagsEXT messageType,
    const VkDebugUtilsMessengerCallbackDataEXT* pCallbackData,
    void* pUserData) {

    const char* severity = "INFO";
    if (messageSeverity >= VK_DEBUG_UTILS_MESSAGE_SEVERITY_ERROR_BIT_EXT) {
        severity = "ERROR";
    } else if (messageSeverity >= VK_DEBUG_UTILS_MESSAGE_SEVERITY_WARNING_BIT_EXT) {
        severity = "WARNING";
    }

    fprintf(stderr, "[VULKAN %s] %s\n", severity, pCallbackData->pMessage);
    return VK_FALSE;
}

static void bridgeFillDebugCreateInfo(VkDebugUtilsMessengerCreateInfoEXT* info) {
    memset(info, 0, sizeof(*info));
    info->sType = VK_STRUCTURE_TYPE_DEBUG_UTILS_MESSENGER_CREATE_INFO_EXT;
    info->messageSeverity = VK_DEBUG_UTILS_MESSAGE_SEVERITY_WARNING_BIT_EXT | VK_DEBUG_UTILS_MESSAGE_SEVERITY_ERROR_BIT_EXT;
    info->messageType = VK_DEBUG_UTILS_MESSAGE_TYPE_GENERAL_BIT_EXT | VK_DEBUG_UTILS_MESSAGE_TYPE_VALIDATION_BIT_EXT | VK_DEBUG_UTILS_MESSAGE_TYPE_PERFORMANCE_BIT_EXT;
    info->pfnUserCallback = bridgeDebugCallback;
}

static VkResult bridgeCreateDebugMessenger(VkInstance instance, const VkDebugUtilsMessengerCreateInfoEXT* pCreateInfo, VkDebugUtilsMessengerEXT* pDebugMessenger) {
    PFN_vkCreateDebugUtilsMessengerEXT func = (PFN_vkCreateDebugUtilsMessengerEXT)vkGetInstanceProcAddr(instance, "vkCreateDebugUtilsMessengerEXT");
    if (func == NULL) {
        return VK_ERROR_EXTENSION_NOT_PRESENT;
    }
    return func(instance, pCreateInfo, NULL, pDebugMessenger);
}

static void bridgeDestroyDebugMessenger(VkInstance instance, VkDebugUtilsMessengerEXT debugMessenger) {
    PFN_vkDestroyDebugUtilsMessengerEXT func = (PFN_vkDestroyDebugUtilsMessengerEXT)vkGetInstanceProcAddr(instance, "vkDestroyDebugUtilsMessengerEXT");
    if (func != NULL) {
        func(instance, debugMessenger, NULL);
    }
}
*/
import "C"
import (
	"fmt"
	"runtime"
	"unsafe"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// Instance is a headless Vulkan instance. No surface extensions are enabled;
// images are handed to the compositor through exported memory instead.
type Instance struct {
	Handle           C.VkInstance
	DebugMessenger   C.VkDebugUtilsMessengerEXT
	EnableValidation bool
}

type InstanceConfig struct {
	AppName          string
	EngineName       string
	AppVersion       uint32
	EnableValidation bool
}

func DefaultInstanceConfig() InstanceConfig {
	return InstanceConfig{
		AppName:          "render-bridge",
		EngineName:       "render-bridge",
		AppVersion:       VK_MAKE_VERSION(1, 0, 0),
		EnableValidation: false,
	}
}

func NewInstance(config InstanceConfig) (*Instance, error) {
	var pinner runtime.Pinner
	defer pinner.Unpin()

	appName := C.CString(config.AppName)
	defer C.free(unsafe.Pointer(appName))
	engineName := C.CString(config.EngineName)
	defer C.free(unsafe.Pointer(engineName))

	appInfo := &C.VkApplicationInfo{
		sType:              C.VK_STRUCTURE_TYPE_APPLICATION_INFO,
		pApplicationName:   appName,
		applicationVersion: C.uint32_t(config.AppVersion),
		pEngineName:        engineName,
		engineVersion:      C.uint32_t(config.AppVersion),
		apiVersion:         C.VK_API_VERSION_1_2,
	}
	pinner.Pin(appInfo)

	createInfo := C.VkInstanceCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO,
		pApplicationInfo: appInfo,
	}

	var debugCreateInfo *C.VkDebugUtilsMessengerCreateInfoEXT
	if config.EnableValidation {
		if !checkValidationLayerSupport() {
			return nil, fmt.Errorf("validation layers requested but not available")
		}

		layer := C.CString(validationLayerName)
		defer C.free(unsafe.Pointer(layer))
		ext := C.CString(C.VK_EXT_DEBUG_UTILS_EXTENSION_NAME)
		defer C.free(unsafe.Pointer(ext))

		layers := []*C.char{layer}
		extensions := []*C.char{ext}
		pinner.Pin(&layers[0])
		pinner.Pin(&extensions[0])

		createInfo.enabledLayerCount = 1
		createInfo.ppEnabledLayerNames = &layers[0]
		createInfo.enabledExtensionCount = 1
		createInfo.ppEnabledExtensionNames = &extensions[0]

		debugCreateInfo = new(C.VkDebugUtilsMessengerCreateInfoEXT)
		C.bridgeFillDebugCreateInfo(debugCreateInfo)
		pinner.Pin(debugCreateInfo)
		createInfo.pNext = unsafe.Pointer(debugCreateInfo)
	}

	var instance C.VkInstance
	result := C.vkCreateInstance(&createInfo, nil, &instance)
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to create Vulkan instance: %d", result)
	}

	inst := &Instance{
		Handle:           instance,
		EnableValidation: config.EnableValidation,
	}

	if config.EnableValidation {
		result = C.bridgeCreateDebugMessenger(instance, debugCreateInfo, &inst.DebugMessenger)
		if result != C.VK_SUCCESS {
			logger.Warningf("failed to set up debug messenger: %d", result)
		}
	}

	return inst, nil
}

func (i *Instance) Destroy() {
	if i.DebugMessenger != nil {
		C.bridgeDestroyDebugMessenger(i.Handle, i.DebugMessenger)
		i.DebugMessenger = nil
	}
	if i.Handle != nil {
		C.vkDestroyInstance(i.Handle, nil)
		i.Handle = nil
	}
}

func checkValidationLayerSupport() bool {
	var layerCount C.uint32_t
	C.vkEnumerateInstanceLayerProperties(&layerCount, nil)
	if layerCount == 0 {
		return false
	}

	availableLayers := make([]C.VkLayerProperties, layerCount)
	C.vkEnumerateInstanceLayerProperties(&layerCount, &availableLayers[0])

	for _, layer := range availableLayers {
		if cString(layer.layerName[:]) == validationLayerName {
			return true
		}
	}
	return false
}

// cString converts a fixed-size, NUL-terminated C char array.
func cString(chars []C.char) string {
	name := make([]byte, 0, len(chars))
	for _, c := range chars {
		if c == 0 {
			break
		}
		name = append(name, byte(c))
	}
	return string(name)
}
