package db

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// totalsFields is the merge payload for an aggregate document.
func totalsFields(totalLunches, totalDinners, extraLunch, extraDinner int) map[string]interface{} {
	return map[string]interface{}{
		"totalLunches":         totalLunches,
		"totalDinners":         totalDinners,
		"totalExtraRiceLunch":  extraLunch,
		"totalExtraRiceDinner": extraDinner,
	}
}
