package device

import (
	"github.com/jaypipes/ghw"

	"synthd/pkg/types"
)

// ProbeGPUs enumerates GPUs visible to the host via PCI. It is advisory
// inventory for status reporting; execution counters come from the
// accelerator runtime, not from here.
func ProbeGPUs() ([]types.GPUDevice, error) {
	gpu, err := ghw.GPU()
	if err != nil {
		return nil, err
	}
	out := make([]types.GPUDevice, 0, len(gpu.GraphicsCards))
	for _, card := range gpu.GraphicsCards {
		d := types.GPUDevice{Index: card.Index, Address: card.Address}
		if card.DeviceInfo != nil {
			if card.DeviceInfo.Vendor != nil {
				d.Vendor = card.DeviceInfo.Vendor.Name
			}
			if card.DeviceInfo.Product != nil {
				d.Product = card.DeviceInfo.Product.Name
			}
		}
		out = append(out, d)
	}
	return out, nil
}
