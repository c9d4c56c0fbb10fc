package sample

// NewSmoothingConverter creates a stage that applies a moving average of
// windowSize samples to the PPG trace. Timestamps, BPM and temperature pass
// through from the newest sample in the window. This only cleans up the
// displayed waveform; beat detection runs on the unsmoothed stream.
func NewSmoothingConverter(windowSize int, bufSize int) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1 // No smoothing if invalid
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			window := make([]Sample, 0, windowSize)
			for s := range in {
				window = append(window, s)
				if len(window) > windowSize {
					window = window[1:]
				}

				smoothed := s
				smoothed.PPG = meanPPG(window)

				select {
				case out <- smoothed:
				default:
					// Channel full, skip
				}
			}
		}()

		return out
	}
}

// meanPPG averages the PPG voltage over a window of samples.
func meanPPG(window []Sample) float64 {
	if len(window) == 0 {
		return 0
	}
	var sum float64
	for _, s := range window {
		sum += s.PPG
	}
	return sum / float64(len(window))
}
