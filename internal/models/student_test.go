package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseList_ByStatus(t *testing.T) {
	l := CourseList{Data: []Course{
		{CourseID: "a", Status: CourseStatusCurrent},
		{CourseID: "b", Status: CourseStatusPast},
		{CourseID: "c", Status: CourseStatusCurrent},
	}}

	current := l.ByStatus(CourseStatusCurrent)
	require.Len(t, current, 2)
	assert.Equal(t, "a", current[0].CourseID)
	assert.Equal(t, "c", current[1].CourseID)

	future := l.ByStatus(CourseStatusFuture)
	assert.NotNil(t, future)
	assert.Empty(t, future)

	assert.NotNil(t, CourseList{}.ByStatus(CourseStatusPast))
}

func TestCourseList_Validate(t *testing.T) {
	assert.NoError(t, CourseList{}.Validate())
	assert.NoError(t, CourseList{Count: 1, Data: []Course{{}}}.Validate())
	assert.ErrorIs(t, CourseList{Count: 3}.Validate(), ErrMissingCourseList)
}

func TestCourseQuery_Values(t *testing.T) {
	assert.Equal(t, "lang=en&page=1&pageSize=10&skip=0&take=10", DefaultCourseQuery().Values().Encode())
}

func TestProfile_UpstreamFieldNames(t *testing.T) {
	raw := `{"jshr":"31203980270051","yonalishCon":"BIS","talim":"Full-time","admdate":"2022-09-01","yearofgraduation":"2026"}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, "31203980270051", p.PersonalID)
	assert.Equal(t, "BIS", p.Direction)
	assert.Equal(t, "Full-time", p.StudyForm)
	assert.Equal(t, "2022-09-01", p.AdmissionDate)
	assert.Equal(t, "2026", p.YearOfGraduation)
}

func TestLoginResponse_Validate(t *testing.T) {
	assert.NoError(t, LoginResponse{AccessToken: "a", RefreshToken: "r"}.Validate())
	assert.ErrorIs(t, LoginResponse{RefreshToken: "r"}.Validate(), ErrMissingAccessToken)
	assert.ErrorIs(t, LoginResponse{AccessToken: "a"}.Validate(), ErrMissingRefreshToken)

	assert.NoError(t, RefreshResponse{AccessToken: "a"}.Validate())
	assert.ErrorIs(t, RefreshResponse{}.Validate(), ErrMissingAccessToken)
}
