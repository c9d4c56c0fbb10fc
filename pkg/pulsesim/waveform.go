package pulsesim

// waveform holds one full period of a pulse sensor reading recorded at 50 Hz
// (one sample every 20 ms) in raw 12-bit ADC units. The recording covers two
// heartbeats, so replaying it in a loop yields a plausible resting heart rate.
var waveform = [...]int{
	2036, 1999, 1973, 1951, 1935, 1933, 1931, 1915, 1911, 1885,
	1885, 1872, 1873, 1856, 1861, 1851, 1861, 1853, 1840, 1815,
	1832, 1857, 1871, 1859, 1837, 1829, 1824, 1821, 1815, 1841,
	1904, 2005, 2101, 2175, 2217, 2262, 2262, 2251, 2242, 2224,
	2200, 2163, 2114, 2067, 2018, 1990, 1970, 1953, 1947, 1936,
	1927, 1883, 1904, 1905, 1904, 1901, 1882, 1865, 1869, 1866,
	1862, 1870, 1872, 1872, 1867, 1858, 1861, 1849, 1831, 1827,
	1823, 1830, 1860, 1950, 2043, 2150, 2217, 2269, 2285, 2273,
	2266, 2243, 2227, 2190, 2128,
}

// Len returns the number of samples in one waveform period.
func Len() int {
	return len(waveform)
}

// At returns the waveform sample at index i. It panics if i is out of
// [0, Len()) like any slice access would.
func At(i int) int {
	return waveform[i]
}
