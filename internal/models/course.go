package models

type Course struct {
	ID   int64  `json:"course_id"`
	Name string `json:"course_name"`
}
