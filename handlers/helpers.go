package handlers

import (
	"html/template"
	"net/http"
)

func render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.ParseFiles("./ui/html/" + name)
	if err != nil {
		http.Error(w, "Error loading template: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template: "+err.Error(), http.StatusInternalServerError)
	}
}

// messageText maps the outcome codes carried on the query string to the
// banner shown on the dashboard.
func messageText(code string) string {
	switch code {
	case "created":
		return "Project created."
	case "updated":
		return "Project updated."
	case "deleted":
		return "Project deleted."
	case "welcome":
		return "Login successful."
	default:
		return ""
	}
}

func errorText(code string) string {
	switch code {
	case "unauthorized":
		return "You do not have permission to do that."
	case "notfound":
		return "Project not found."
	case "internal":
		return "Something went wrong. Please try again."
	default:
		return ""
	}
}
