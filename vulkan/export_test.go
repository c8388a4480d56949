package vulkan

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"

	"render-bridge/bridge"
	"render-bridge/core"
	"render-bridge/frame"
	"render-bridge/surface"
	"render-bridge/target"
)

func testDevice(t *testing.T) *Device {
	t.Helper()

	instance, err := NewInstance(DefaultInstanceConfig())
	if err != nil {
		t.Skipf("no Vulkan instance: %v", err)
	}
	t.Cleanup(instance.Destroy)

	device, err := PickPhysicalDevice(instance, "")
	if err != nil {
		t.Skipf("no exporting device: %v", err)
	}
	if err := device.CreateLogicalDevice(); err != nil {
		t.Fatalf("CreateLogicalDevice: %v", err)
	}
	t.Cleanup(device.Destroy)
	return device
}

func TestVersionString(t *testing.T) {
	if got := VersionString(VK_MAKE_VERSION(1, 2, 198)); got != "1.2.198" {
		t.Errorf("VersionString: expected 1.2.198, got %s", got)
	}
}

func TestTargetFourcc(t *testing.T) {
	if got := TargetFourcc(); got != surface.FourccABGR8888 {
		t.Errorf("TargetFourcc: expected %s, got %s", surface.FourccString(surface.FourccABGR8888), surface.FourccString(got))
	}
}

func TestExport(t *testing.T) {
	device := testDevice(t)
	exporter, err := NewExporter(device)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exporter.Destroy()

	size := frame.Size{Width: 64, Height: 32}
	view, mem, err := exporter.Export(size)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer unix.Close(mem.FD)

	if mem.FD < 0 {
		t.Errorf("Export: expected a valid fd, got %d", mem.FD)
	}
	if mem.AllocationSize < uint64(size.Width*size.Height*4) {
		t.Errorf("Export: expected at least %d bytes, got %d", size.Width*size.Height*4, mem.AllocationSize)
	}

	tv := view.(*TextureView)
	if tv.Size() != size {
		t.Errorf("Size: expected %v, got %v", size, tv.Size())
	}

	clone := view.Clone()
	view.Release()
	view.Release()
	if !clone.(*TextureView).live() {
		t.Errorf("Release: clone must keep the texture alive")
	}
	clone.Release()
	if tv.shared.image != nil {
		t.Errorf("Release: expected native objects destroyed after the last reference")
	}
}

func TestExportZeroSize(t *testing.T) {
	device := testDevice(t)
	exporter, err := NewExporter(device)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exporter.Destroy()

	if _, _, err := exporter.Export(frame.Size{Width: 0, Height: 10}); !errors.Is(err, ErrZeroSize) {
		t.Errorf("Export: expected ErrZeroSize, got %v", err)
	}
}

func TestRender(t *testing.T) {
	device := testDevice(t)
	exporter, err := NewExporter(device)
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	defer exporter.Destroy()

	renderer, err := NewRenderer(exporter)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer renderer.Destroy()

	view, mem, err := exporter.Export(frame.Size{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer unix.Close(mem.FD)
	defer view.Release()

	jobs := []bridge.Job{
		{Target: target.Handle(1), View: view, Clear: core.Color{R: 1, A: 1}, Camera: "main"},
		{Target: target.Handle(2), View: foreignView{}, Camera: "other"},
	}
	failed := renderer.Render(jobs)
	if err := failed[target.Handle(1)]; err != nil {
		t.Errorf("Render: expected target 1 to succeed, got %v", err)
	}
	if err := failed[target.Handle(2)]; !errors.Is(err, ErrForeignView) {
		t.Errorf("Render: expected ErrForeignView for target 2, got %v", err)
	}
}

type foreignView struct{}

func (foreignView) Clone() frame.View { return foreignView{} }
func (foreignView) Release()          {}
