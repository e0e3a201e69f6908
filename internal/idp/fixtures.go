package idp

import "github.com/rryowa/campus_session/internal/models"

const DemoUsername = "U22312"

func ptr(f float64) *float64 { return &f }

// SeedDemo adds a single demo student with a realistic mix of current and
// past courses.
func SeedDemo(d *Directory, password string) error {
	return d.Add(Record{
		Username: DemoUsername,
		Profile: models.Profile{
			ID:               DemoUsername,
			FullName:         "Aziza Karimova",
			Email:            "u22312@students.tiue.uz",
			Group:            "BIS-22-1",
			PersonalID:       "31203980270051",
			Birthday:         "2003-12-03",
			Phone:            "+998901234567",
			Direction:        "Business Information Systems",
			Degree:           "Bachelor",
			StudyForm:        "Full-time",
			StudyLanguage:    "English",
			Length:           "4",
			AdmissionDate:    "2022-09-01",
			YearOfGraduation: "2026",
		},
		Courses: []models.Course{
			{CourseID: "CS201", CourseName: "Data Structures", Status: models.CourseStatusCurrent, Instructor: "D. Yusupov", Credits: 6, Semester: "Fall 2025"},
			{CourseID: "CS230", CourseName: "Databases", Status: models.CourseStatusCurrent, Instructor: "N. Rashidova", Credits: 6, Semester: "Fall 2025"},
			{CourseID: "MA101", CourseName: "Calculus I", Status: models.CourseStatusPast, FinalGrade: ptr(86), Instructor: "S. Aliev", Credits: 6, Semester: "Fall 2022"},
			{CourseID: "EN110", CourseName: "Academic English", Status: models.CourseStatusPast, FinalGrade: ptr(91), Credits: 4, Semester: "Spring 2023"},
			{CourseID: "CS310", CourseName: "Distributed Systems", Status: models.CourseStatusFuture, Credits: 6, Semester: "Spring 2026"},
		},
		Grades: []models.Grade{
			{ID: "g1", Subject: "Data Structures", AssignmentName: "Midterm", Type: "exam", Grade: 42, MaxGrade: 50, Date: "2025-10-20", Teacher: "D. Yusupov"},
			{ID: "g2", Subject: "Databases", AssignmentName: "Lab 3", Type: "homework", Grade: 9, MaxGrade: 10, Date: "2025-10-02", Teacher: "N. Rashidova"},
		},
		Attendance: []models.Attendance{
			{CourseID: "CS201", CourseName: "Data Structures", Attended: 14, Total: 15},
			{CourseID: "CS230", CourseName: "Databases", Attended: 12, Total: 15},
		},
		Messages: []models.Message{
			{ID: "m1", From: "Registrar", Subject: "Spring registration", Body: "Registration opens on December 1.", Date: "2025-11-15"},
		},
	}, password)
}
