package services

import "time"

// windowsOverlap is the venue booking conflict rule: two windows conflict
// when existingStart <= candidateEnd AND existingEnd >= candidateStart.
// Boundaries are inclusive, so a booking ending exactly when another starts
// still conflicts, and equal windows always conflict.
func windowsOverlap(existingStart, existingEnd, candidateStart, candidateEnd time.Time) bool {
	return !existingStart.After(candidateEnd) && !existingEnd.Before(candidateStart)
}

// vehicleSlotTaken is the transport booking conflict rule: exact equality of
// the departure timestamp against an approved booking of the same vehicle.
// Overlap is not considered; transport requests carry no end time.
func vehicleSlotTaken(existingDeparture, candidateDeparture time.Time) bool {
	return existingDeparture.Equal(candidateDeparture)
}
