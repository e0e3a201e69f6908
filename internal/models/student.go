package models

import (
	"errors"
	"net/url"
	"strconv"
)

var ErrMissingCourseList = errors.New("response is missing course data")

// Profile mirrors the directory's student record. Field names follow the
// upstream API, which mixes transliterated and english keys.
type Profile struct {
	ID               string `json:"id,omitempty"`
	FullName         string `json:"full_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Group            string `json:"group,omitempty"`
	PersonalID       string `json:"jshr,omitempty"`
	Birthday         string `json:"birthday,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Direction        string `json:"yonalishCon,omitempty"`
	Degree           string `json:"degree,omitempty"`
	StudyForm        string `json:"talim,omitempty"`
	StudyLanguage    string `json:"talimcon,omitempty"`
	Length           string `json:"length,omitempty"`
	AdmissionDate    string `json:"admdate,omitempty"`
	YearOfGraduation string `json:"yearofgraduation,omitempty"`
}

type Course struct {
	CourseID   string   `json:"course_id"`
	CourseName string   `json:"course_name"`
	Status     string   `json:"status"`
	FinalGrade *float64 `json:"final_grade,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Credits    int      `json:"credits,omitempty"`
	Semester   string   `json:"semester,omitempty"`
}

// CourseList is the paginated COURSES payload.
type CourseList struct {
	Count int      `json:"count"`
	Data  []Course `json:"data"`
}

func (l CourseList) Validate() error {
	if l.Data == nil && l.Count > 0 {
		return ErrMissingCourseList
	}
	return nil
}

// ByStatus returns the courses whose status equals status, never nil.
func (l CourseList) ByStatus(status string) []Course {
	out := make([]Course, 0, len(l.Data))
	for _, c := range l.Data {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// CourseQuery holds the COURSES pagination parameters.
type CourseQuery struct {
	Lang     string
	Page     int
	PageSize int
	Skip     int
	Take     int
}

// DefaultCourseQuery matches the upstream client's defaults.
func DefaultCourseQuery() CourseQuery {
	return CourseQuery{Lang: "en", Page: 1, PageSize: 10, Skip: 0, Take: 10}
}

func (q CourseQuery) Values() url.Values {
	v := url.Values{}
	v.Set("lang", q.Lang)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	v.Set("skip", strconv.Itoa(q.Skip))
	v.Set("take", strconv.Itoa(q.Take))
	return v
}

type Grade struct {
	ID             string  `json:"id,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	CourseName     string  `json:"course_name,omitempty"`
	AssignmentName string  `json:"assignment_name,omitempty"`
	Type           string  `json:"type,omitempty"`
	Grade          float64 `json:"grade"`
	MaxGrade       float64 `json:"maxGrade,omitempty"`
	FinalGrade     float64 `json:"final_grade,omitempty"`
	Date           string  `json:"date,omitempty"`
	Teacher        string  `json:"teacher,omitempty"`
}

type Attendance struct {
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
	Date       string `json:"date,omitempty"`
	Status     string `json:"status,omitempty"`
	Attended   int    `json:"attended"`
	Total      int    `json:"total"`
}

type Message struct {
	ID      string `json:"id,omitempty"`
	From    string `json:"from,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	Date    string `json:"date,omitempty"`
	Read    bool   `json:"read"`
}

// Dashboard aggregates the home screen data. Grades and Attendance are
// empty, never nil, when their fetch failed.
type Dashboard struct {
	Profile          Profile      `json:"profile"`
	CurrentCourses   []Course     `json:"currentCourses"`
	CompletedCourses []Course     `json:"completedCourses"`
	Grades           []Grade      `json:"grades"`
	Attendance       []Attendance `json:"attendance"`
}
