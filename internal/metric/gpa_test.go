package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func grades(values ...float64) []models.Grade {
	out := make([]models.Grade, 0, len(values))
	for _, v := range values {
		out = append(out, models.Grade{GradeValue: v, Weight: 1})
	}
	return out
}

func TestGPAEmpty(t *testing.T) {
	assert.Equal(t, 0.0, GPA(nil))
	assert.Equal(t, 0.0, GPA([]models.Grade{}))
}

func TestGPAScale(t *testing.T) {
	assert.Equal(t, 4.0, GPA(grades(100)))
	assert.Equal(t, 2.0, GPA(grades(50)))
	assert.Equal(t, 2.8, GPA(grades(80, 60)))
}

func TestGPARounding(t *testing.T) {
	// mean 85.333... / 25 = 3.41333... -> 3.41
	assert.Equal(t, 3.41, GPA(grades(90, 80, 86)))
}

func TestGPAIgnoresWeight(t *testing.T) {
	weighted := []models.Grade{
		{GradeValue: 100, Weight: 10},
		{GradeValue: 0, Weight: 0.1},
	}
	assert.Equal(t, 2.0, GPA(weighted))
}
