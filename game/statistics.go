package game

import (
	"math"
	"sort"
)

// Sum returns the total of the samples.
func Sum(data []float64) float64 {
	var total float64
	for _, v := range data {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for an empty set.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return Sum(data) / float64(len(data))
}

// Median returns the middle sample. The input is sorted in place.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sort.Float64s(data)
	if n%2 == 1 {
		return data[n/2]
	}
	return (data[n/2-1] + data[n/2]) * 0.5
}

// Variance returns the population variance.
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := Mean(data)
	var sq float64
	for _, v := range data {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(data))
}

// StandardDeviation returns the population standard deviation.
func StandardDeviation(data []float64) float64 {
	return math.Sqrt(Variance(data))
}
