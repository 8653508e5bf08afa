package models

type PageData struct {
	Projects  []Project
	Project   *Project
	CSRFtoken string
	Flash     string
	Error     string
	Message   string
	IsAdmin   bool
	UserName  string
}
