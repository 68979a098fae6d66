package metric

import (
	"math"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

// GPA converts a student's grades to the 4.0 scale: the unweighted mean of
// all grade values divided by 25, rounded to 2 decimals. Returns 0.0 when no
// grades exist. The Weight field on Grade is intentionally not applied here;
// the reference rule averages values regardless of weight (flagged for
// product clarification, do not "fix" silently).
func GPA(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return 0.0
	}
	var total float64
	for _, g := range grades {
		total += g.GradeValue
	}
	return Round2(total / float64(len(grades)) / 25)
}

// Round2 rounds to 2 decimal places (used for GPA values).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to 1 decimal place (used for percentages).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
