package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTuitionUnmarshalAcceptsBackendShapes(t *testing.T) {
	raw := `{"_id":"665f1","subject":"Physics","class":"Class 9","budget":"2500","location":"Dhanmondi","daysPerWeek":3,"timeSlot":"5-7 PM","status":"pending"}`

	var tuition Tuition
	require.NoError(t, json.Unmarshal([]byte(raw), &tuition))

	assert.Equal(t, "665f1", tuition.ID)
	assert.Equal(t, 2500, tuition.Budget)
	assert.Equal(t, 3, tuition.DaysPerWeek)
	assert.Equal(t, TuitionStatusPending, tuition.Status)
}

func TestTuitionUnmarshalPrefersID(t *testing.T) {
	var tuition Tuition
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","_id":"b","budget":1200.0,"daysPerWeek":"4"}`), &tuition))

	assert.Equal(t, "a", tuition.ID)
	assert.Equal(t, 1200, tuition.Budget)
	assert.Equal(t, 4, tuition.DaysPerWeek)
}

func TestTuitionUnmarshalRejectsGarbageBudget(t *testing.T) {
	var tuition Tuition
	assert.Error(t, json.Unmarshal([]byte(`{"id":"a","budget":"lots"}`), &tuition))
}

func TestStatusMutable(t *testing.T) {
	assert.True(t, TuitionStatusPending.Mutable())
	assert.True(t, TuitionStatusRejected.Mutable())
	assert.False(t, TuitionStatusApproved.Mutable())
	assert.False(t, TuitionStatusCompleted.Mutable())
}

func TestCatalogueSizes(t *testing.T) {
	assert.Len(t, Subjects, 16)
	assert.Len(t, Classes, 19)
}
