// ABOUTME: Software volume helpers shared by output backends
// ABOUTME: Scales normalized samples with clipping protection
package output

// applyVolume scales src by the volume/mute setting into dst with clipping
// protection. dst and src may alias; dst must be at least as long as src.
func applyVolume(dst, src []float32, volume int, muted bool) {
	mult := volumeMultiplier(volume, muted)

	for i, sample := range src {
		scaled := sample * mult
		if scaled > 1 {
			scaled = 1
		} else if scaled < -1 {
			scaled = -1
		}
		dst[i] = scaled
	}
}

// volumeMultiplier calculates the gain for a 0-100 volume setting.
func volumeMultiplier(volume int, muted bool) float32 {
	if muted {
		return 0
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	return float32(volume) / 100.0
}
