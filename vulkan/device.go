package vulkan

/*
#include <vulkan/vulkan.h>
#include <stdbool.h>
#include <stdlib.h>
#include <string.h>

static bool bridgeFindGraphicsFamily(VkPhysicalDevice device, uint32_t* family) {
    uint32_t queueFamilyCount = 0;
    vkGetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, NULL);

    VkQueueFamilyProperties* queueFamilies = (VkQueueFamilyProperties*)malloc(queueFamilyCount * sizeof(VkQueueFamilyProperties));
    vkGetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies);

    bool found = false;
    for (uint32_t i = 0; i < queueFamilyCount; i++) {
        if (queueFamilies[i].queueFlags & VK_QUEUE_GRAPHICS_BIT) {
            *family = i;
            found = true;
            break;
        }
    }

    free(queueFamilies);
    return found;
}

static bool bridgeHasDeviceExtension(VkPhysicalDevice device, const char* name) {
    uint32_t extensionCount = 0;
    vkEnumerateDeviceExtensionProperties(device, NULL, &extensionCount, NULL);

    VkExtensionProperties* availableExtensions = (VkExtensionProperties*)malloc(extensionCount * sizeof(VkExtensionProperties));
    vkEnumerateDeviceExtensionProperties(device, NULL, &extensionCount, availableExtensions);

    bool found = false;
    for (uint32_t i = 0; i < extensionCount; i++) {
        if (strcmp(name, availableExtensions[i].extensionName) == 0) {
            found = true;
            break;
        }
    }

    free(availableExtensions);
    return found;
}
*/
import "C"
import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"
)

type Device struct {
	PhysicalDevice C.VkPhysicalDevice
	Device         C.VkDevice
	GraphicsQueue  C.VkQueue
	CommandPool    C.VkCommandPool

	GraphicsFamily uint32
	Properties     C.VkPhysicalDeviceProperties
	MemoryProps    C.VkPhysicalDeviceMemoryProperties
}

// DeviceInfo summarises a physical device for selection and listing.
type DeviceInfo struct {
	Name          string
	Type          string
	APIVersion    uint32
	MaxImageSize  uint32
	ExportSupport bool
	GraphicsQueue bool
	Score         uint32
}

// Usable reports whether render targets can be exported from this device.
func (info DeviceInfo) Usable() bool {
	return info.ExportSupport && info.GraphicsQueue && info.APIVersion >= VulkanVersion11
}

func physicalDevices(instance *Instance) ([]C.VkPhysicalDevice, error) {
	var deviceCount C.uint32_t
	result := C.vkEnumeratePhysicalDevices(instance.Handle, &deviceCount, nil)
	if result != C.VK_SUCCESS {
		return nil, fmt.Errorf("failed to enumerate physical devices: %d", result)
	}
	if deviceCount == 0 {
		return nil, fmt.Errorf("%w: no GPUs with Vulkan support", ErrNoDevice)
	}

	devices := make([]C.VkPhysicalDevice, deviceCount)
	result = C.vkEnumeratePhysicalDevices(instance.Handle, &deviceCount, &devices[0])
	if result != C.VK_SUCCESS && result != C.VK_INCOMPLETE {
		return nil, fmt.Errorf("failed to enumerate physical devices: %d", result)
	}
	return devices[:deviceCount], nil
}

func describe(device C.VkPhysicalDevice, preferred string) DeviceInfo {
	var props C.VkPhysicalDeviceProperties
	C.vkGetPhysicalDeviceProperties(device, &props)

	extName := C.CString(ExternalMemoryFdExtension)
	defer C.free(unsafe.Pointer(extName))

	var family C.uint32_t
	info := DeviceInfo{
		Name:          cString(props.deviceName[:]),
		Type:          deviceTypeName(props.deviceType),
		APIVersion:    uint32(props.apiVersion),
		MaxImageSize:  uint32(props.limits.maxImageDimension2D),
		ExportSupport: bool(C.bridgeHasDeviceExtension(device, extName)),
		GraphicsQueue: bool(C.bridgeFindGraphicsFamily(device, &family)),
	}

	if !info.Usable() {
		return info
	}

	// Discrete GPUs have a significant advantage
	if props.deviceType == C.VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU {
		info.Score += 1000
	}
	info.Score += info.MaxImageSize
	if preferred != "" && strings.Contains(strings.ToLower(info.Name), strings.ToLower(preferred)) {
		info.Score += 1 << 24
	}
	return info
}

// EnumerateDevices lists every physical device visible to the instance.
func EnumerateDevices(instance *Instance) ([]DeviceInfo, error) {
	devices, err := physicalDevices(instance)
	if err != nil {
		return nil, err
	}
	infos := make([]DeviceInfo, len(devices))
	for i, device := range devices {
		infos[i] = describe(device, "")
	}
	return infos, nil
}

// PickPhysicalDevice selects the best device that can export memory as file
// descriptors. A device whose name contains preferred wins over any other
// usable device.
func PickPhysicalDevice(instance *Instance, preferred string) (*Device, error) {
	devices, err := physicalDevices(instance)
	if err != nil {
		return nil, err
	}

	var bestDevice C.VkPhysicalDevice
	var bestScore uint32
	var missingExt bool

	for _, device := range devices {
		info := describe(device, preferred)
		if !info.ExportSupport {
			missingExt = true
			logger.Infof("skipping %q: %s not supported", info.Name, ExternalMemoryFdExtension)
			continue
		}
		if !info.Usable() {
			logger.Infof("skipping %q: api %s, graphics queue %t", info.Name, VersionString(info.APIVersion), info.GraphicsQueue)
			continue
		}
		if info.Score > bestScore {
			bestScore = info.Score
			bestDevice = device
		}
	}

	if bestDevice == nil {
		if missingExt {
			return nil, fmt.Errorf("%w: %s", ErrExtensionMissing, ExternalMemoryFdExtension)
		}
		return nil, ErrNoDevice
	}

	d := &Device{
		PhysicalDevice: bestDevice,
	}
	C.vkGetPhysicalDeviceProperties(bestDevice, &d.Properties)
	C.vkGetPhysicalDeviceMemoryProperties(bestDevice, &d.MemoryProps)

	return d, nil
}

// CreateLogicalDevice creates the device with a single graphics queue and the
// external memory extensions enabled, plus a resettable command pool.
func (d *Device) CreateLogicalDevice() error {
	var family C.uint32_t
	if !C.bridgeFindGraphicsFamily(d.PhysicalDevice, &family) {
		return fmt.Errorf("%w: no graphics queue family", ErrNoDevice)
	}
	d.GraphicsFamily = uint32(family)

	var pinner runtime.Pinner
	defer pinner.Unpin()

	queuePriority := new(C.float)
	*queuePriority = 1.0
	pinner.Pin(queuePriority)

	queueCreateInfo := &C.VkDeviceQueueCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_DEVICE_QUEUE_CREATE_INFO,
		queueFamilyIndex: family,
		queueCount:       1,
		pQueuePriorities: queuePriority,
	}
	pinner.Pin(queueCreateInfo)

	extensionName := C.CString(ExternalMemoryFdExtension)
	defer C.free(unsafe.Pointer(extensionName))
	extensions := []*C.char{extensionName}
	pinner.Pin(&extensions[0])

	createInfo := C.VkDeviceCreateInfo{
		sType:                   C.VK_STRUCTURE_TYPE_DEVICE_CREATE_INFO,
		queueCreateInfoCount:    1,
		pQueueCreateInfos:       queueCreateInfo,
		enabledExtensionCount:   C.uint32_t(len(extensions)),
		ppEnabledExtensionNames: &extensions[0],
	}

	result := C.vkCreateDevice(d.PhysicalDevice, &createInfo, nil, &d.Device)
	if result != C.VK_SUCCESS {
		return fmt.Errorf("failed to create logical device: %d", result)
	}

	C.vkGetDeviceQueue(d.Device, family, 0, &d.GraphicsQueue)

	poolInfo := C.VkCommandPoolCreateInfo{
		sType:            C.VK_STRUCTURE_TYPE_COMMAND_POOL_CREATE_INFO,
		queueFamilyIndex: family,
		flags:            C.VK_COMMAND_POOL_CREATE_RESET_COMMAND_BUFFER_BIT,
	}

	result = C.vkCreateCommandPool(d.Device, &poolInfo, nil, &d.CommandPool)
	if result != C.VK_SUCCESS {
		return fmt.Errorf("failed to create command pool: %d", result)
	}

	logger.Noticef("using %s (%s, api %s)", d.Name(), d.Type(), VersionString(uint32(d.Properties.apiVersion)))
	return nil
}

func (d *Device) Destroy() {
	if d.CommandPool != nil {
		C.vkDestroyCommandPool(d.Device, d.CommandPool, nil)
		d.CommandPool = nil
	}
	if d.Device != nil {
		C.vkDestroyDevice(d.Device, nil)
		d.Device = nil
	}
}

func (d *Device) WaitIdle() {
	C.vkDeviceWaitIdle(d.Device)
}

func (d *Device) Name() string {
	return cString(d.Properties.deviceName[:])
}

func (d *Device) Type() string {
	return deviceTypeName(d.Properties.deviceType)
}

func deviceTypeName(t C.VkPhysicalDeviceType) string {
	switch t {
	case C.VK_PHYSICAL_DEVICE_TYPE_INTEGRATED_GPU:
		return "Integrated GPU"
	case C.VK_PHYSICAL_DEVICE_TYPE_DISCRETE_GPU:
		return "Discrete GPU"
	case C.VK_PHYSICAL_DEVICE_TYPE_VIRTUAL_GPU:
		return "Virtual GPU"
	case C.VK_PHYSICAL_DEVICE_TYPE_CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

func (d *Device) FindMemoryType(typeFilter uint32, properties C.VkMemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < uint32(d.MemoryProps.memoryTypeCount); i++ {
		if (typeFilter&(1<<i)) != 0 && (d.MemoryProps.memoryTypes[i].propertyFlags&properties) == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("failed to find suitable memory type")
}
