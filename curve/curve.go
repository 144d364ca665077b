// Package curve implements the perceptual dim curve used by every intensity path in rgbw. LEDs are driven linearly by
// PWM duty, but perceived brightness is not linear in duty: the curve maps a linear byte to a corrected byte following
// roughly 255*(v/255)^2.8, with a dead zone at the low end.
package curve

import "math"

// Gamma is the exponent the Table approximates.
const Gamma = 2.8

// Table is the dim curve lookup table. Entries are non-decreasing, Table[0] is 0 and Table[255] is 255.
var Table = [256]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2,
	2, 3, 3, 3, 3, 3, 3, 3, 4, 4, 4, 4, 4, 5, 5, 5,
	5, 6, 6, 6, 6, 7, 7, 7, 7, 8, 8, 8, 9, 9, 9, 10,
	10, 10, 11, 11, 11, 12, 12, 13, 13, 13, 14, 14, 15, 15, 16, 16,
	17, 17, 18, 18, 19, 19, 20, 20, 21, 21, 22, 22, 23, 24, 24, 25,
	25, 26, 27, 27, 28, 29, 29, 30, 31, 32, 32, 33, 34, 35, 35, 36,
	37, 38, 39, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 50,
	51, 52, 54, 55, 56, 57, 58, 59, 60, 61, 62, 63, 64, 66, 67, 68,
	69, 70, 72, 73, 74, 75, 77, 78, 79, 81, 82, 83, 85, 86, 87, 89,
	90, 92, 93, 95, 96, 98, 99, 101, 102, 104, 105, 107, 109, 110, 112, 114,
	115, 117, 119, 120, 122, 124, 126, 127, 129, 131, 133, 135, 137, 138, 140, 142,
	144, 146, 148, 150, 152, 154, 156, 158, 160, 162, 164, 167, 169, 171, 173, 175,
	177, 180, 182, 184, 186, 189, 191, 193, 196, 198, 200, 203, 205, 208, 210, 213,
	215, 218, 220, 223, 225, 228, 231, 233, 236, 239, 241, 244, 247, 249, 252, 255,
}

// Correct returns the dim curve corrected value for v.
func Correct(v uint8) uint8 {
	return Table[v]
}

// Inverse maps a corrected intensity back into the linear domain using 255*(v/255)^(1/Gamma). v may exceed 255 (it is
// usually the sum of several corrected channels); the result is rounded half-up and saturates at 255.
func Inverse(v float64) uint8 {
	if v <= 0 {
		return 0
	}

	return uint8(math.Min(255*math.Pow(v/255, 1/Gamma)+0.5, 255))
}
