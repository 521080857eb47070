package exchange

import "fmt"

// TODO: read the overlap model entities from geometric model attributes
// instead of the ranges hardcoded for the D3D coupling case.

// IsModelEntInOverlap returns 1 if the geometric model entity of dimension
// dim and identifier id is part of the overlap region, 0 otherwise. Model
// entity ids increase with distance from the magnetic axis.
func IsModelEntInOverlap(dim int, id int32) int8 {
	switch {
	case dim == 2 && id >= 16 && id <= 25:
		return 1
	case (dim == 1 || dim == 0) && id >= 15 && id <= 25:
		return 1
	}
	return 0
}

// MarkOverlap returns the isOverlap tag of every vertex from its model
// classification dimension and id
func MarkOverlap(classDims []int8, classIDs []int32) ([]int8, error) {
	if len(classDims) != len(classIDs) {
		return nil, fmt.Errorf("classification has %d dims and %d ids", len(classDims), len(classIDs))
	}
	isOverlap := make([]int8, len(classIDs))
	for i := range classIDs {
		isOverlap[i] = IsModelEntInOverlap(int(classDims[i]), classIDs[i])
	}
	return isOverlap, nil
}
