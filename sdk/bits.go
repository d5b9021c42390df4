package sdk

import "math"

func bitsToFloat64(b uint64) float64 { return math.Float64frombits(b) }
func float64ToBits(f float64) uint64 { return math.Float64bits(f) }
func bitsToFloat32(b uint32) float32 { return math.Float32frombits(b) }
func float32ToBits(f float32) uint32 { return math.Float32bits(f) }
