package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"projectboard/models"
	"projectboard/utils"
)

// requireSession loads the session and redirects to the login form when the
// request is unauthenticated. The second return value reports whether the
// caller may continue.
func requireSession(w http.ResponseWriter, r *http.Request, sessions *utils.SessionManager) (*models.Session, bool) {
	session, err := sessions.Current(r)
	if err != nil {
		log.Println("error reading session: ", err)
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return nil, false
	}
	if err := utils.RequireAuthenticated(session); err != nil {
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return nil, false
	}
	return session, true
}

// requireAdmin additionally gates on the admin role. Non-admins land back
// on the dashboard with an unauthorized flag, the way read-only users see
// every failed mutation.
func requireAdmin(w http.ResponseWriter, r *http.Request, sessions *utils.SessionManager) (*models.Session, bool) {
	session, ok := requireSession(w, r, sessions)
	if !ok {
		return nil, false
	}
	if err := utils.RequireRole(session, models.RoleAdmin); err != nil {
		http.Redirect(w, r, "/?action=index&error=unauthorized", http.StatusSeeOther)
		return nil, false
	}
	return session, true
}

// DashboardHandler lists all projects. Reading requires authentication
// only; the action column in the view depends on the role.
func DashboardHandler(w http.ResponseWriter, r *http.Request, projects utils.ProjectStore, sessions *utils.SessionManager) {
	session, ok := requireSession(w, r, sessions)
	if !ok {
		return
	}

	list, err := projects.GetAll(r.Context())
	if err != nil {
		log.Println("error listing projects: ", err)
		http.Error(w, "Unable to load projects", http.StatusInternalServerError)
		return
	}

	csrfToken, err := sessions.IssueCSRF(r.Context(), session)
	if err != nil {
		log.Println("error issuing csrf token: ", err)
	}

	q := r.URL.Query()
	render(w, "dashboard-list.html", models.PageData{
		Projects:  list,
		CSRFtoken: csrfToken,
		Message:   messageText(q.Get("message")),
		Error:     errorText(q.Get("error")),
		IsAdmin:   session.Role == models.RoleAdmin,
		UserName:  session.Name,
	})
}

// CreateProjectHandler shows the empty form on GET and inserts on POST.
// Admin only.
func CreateProjectHandler(w http.ResponseWriter, r *http.Request, projects utils.ProjectStore, sessions *utils.SessionManager) {
	session, ok := requireAdmin(w, r, sessions)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		renderProjectForm(w, r, sessions, session, "dashboard-create.html", nil)
		return
	}

	if !sessions.ValidateCSRF(session, r.FormValue("csrf_token")) {
		log.Println("project create rejected: ", utils.ErrCSRFMismatch)
		flashAndRedirect(w, r, sessions, session, "Invalid request token. Please reload the page and try again.", "/?action=create")
		return
	}

	project, err := parseProjectForm(r)
	if err == nil {
		err = utils.ValidateProjectInput(project)
	}
	if err != nil {
		flashAndRedirect(w, r, sessions, session, err.Error(), "/?action=create")
		return
	}

	if err := projects.Create(r.Context(), project); err != nil {
		log.Println("error creating project: ", err)
		http.Redirect(w, r, "/?action=index&error=internal", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?action=index&message=created", http.StatusSeeOther)
}

// EditProjectHandler shows the pre-filled form on GET and updates on POST.
// Admin only. A missing id is a NotFound, never a silent no-op.
func EditProjectHandler(w http.ResponseWriter, r *http.Request, projects utils.ProjectStore, sessions *utils.SessionManager) {
	session, ok := requireAdmin(w, r, sessions)
	if !ok {
		return
	}

	id, ok := projectID(r)
	if !ok {
		http.Redirect(w, r, "/?action=index", http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		project, err := projects.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				http.Redirect(w, r, "/?action=index&error=notfound", http.StatusSeeOther)
				return
			}
			log.Println("error fetching project: ", err)
			http.Redirect(w, r, "/?action=index&error=internal", http.StatusSeeOther)
			return
		}
		renderProjectForm(w, r, sessions, session, "dashboard-edit.html", project)
		return
	}

	if !sessions.ValidateCSRF(session, r.FormValue("csrf_token")) {
		log.Println("project edit rejected: ", utils.ErrCSRFMismatch)
		flashAndRedirect(w, r, sessions, session, "Invalid request token. Please reload the page and try again.", "/?action=edit&id="+strconv.Itoa(id))
		return
	}

	project, err := parseProjectForm(r)
	if err == nil {
		err = utils.ValidateProjectInput(project)
	}
	if err != nil {
		flashAndRedirect(w, r, sessions, session, err.Error(), "/?action=edit&id="+strconv.Itoa(id))
		return
	}

	if err := projects.Update(r.Context(), id, project); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.Redirect(w, r, "/?action=index&error=notfound", http.StatusSeeOther)
			return
		}
		log.Println("error updating project: ", err)
		http.Redirect(w, r, "/?action=index&error=internal", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?action=index&message=updated", http.StatusSeeOther)
}

// DeleteProjectHandler removes a project. Admin only, POST only; a GET
// changes nothing and bounces back to the dashboard.
func DeleteProjectHandler(w http.ResponseWriter, r *http.Request, projects utils.ProjectStore, sessions *utils.SessionManager) {
	session, ok := requireAdmin(w, r, sessions)
	if !ok {
		return
	}

	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/?action=index", http.StatusSeeOther)
		return
	}

	id, ok := projectID(r)
	if !ok {
		http.Redirect(w, r, "/?action=index", http.StatusSeeOther)
		return
	}

	if !sessions.ValidateCSRF(session, r.FormValue("csrf_token")) {
		log.Println("project delete rejected: ", utils.ErrCSRFMismatch)
		http.Redirect(w, r, "/?action=index&error=unauthorized", http.StatusSeeOther)
		return
	}

	if err := projects.Delete(r.Context(), id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			http.Redirect(w, r, "/?action=index&error=notfound", http.StatusSeeOther)
			return
		}
		log.Println("error deleting project: ", err)
		http.Redirect(w, r, "/?action=index&error=internal", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?action=index&message=deleted", http.StatusSeeOther)
}

func projectID(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func renderProjectForm(w http.ResponseWriter, r *http.Request, sessions *utils.SessionManager, session *models.Session, name string, project *models.Project) {
	csrfToken, err := sessions.IssueCSRF(r.Context(), session)
	if err != nil {
		log.Println("error issuing csrf token: ", err)
	}
	flash, err := sessions.PopFlash(r.Context(), session)
	if err != nil {
		log.Println("error reading flash message: ", err)
	}
	render(w, name, models.PageData{
		Project:   project,
		CSRFtoken: csrfToken,
		Flash:     flash,
		IsAdmin:   true,
		UserName:  session.Name,
	})
}

func flashAndRedirect(w http.ResponseWriter, r *http.Request, sessions *utils.SessionManager, session *models.Session, msg, target string) {
	if err := sessions.SetFlash(r.Context(), session, msg); err != nil {
		log.Println("error setting flash: ", err)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func parseProjectForm(r *http.Request) (models.Project, error) {
	var p models.Project
	p.Name = utils.SanitizeInput(r.FormValue("name"))
	p.Description = utils.SanitizeInput(r.FormValue("description"))
	p.Leader = utils.SanitizeInput(r.FormValue("leader"))
	p.Completed = r.FormValue("completed") != ""

	if raw := utils.SanitizeInput(r.FormValue("budget")); raw != "" {
		budget, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, errors.New("budget must be a number")
		}
		p.Budget = budget
	}

	if raw := utils.SanitizeInput(r.FormValue("start_date")); raw != "" {
		start, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return p, errors.New("start date must be a valid date")
		}
		p.StartDate = start
	}

	if raw := utils.SanitizeInput(r.FormValue("end_date")); raw != "" {
		end, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return p, errors.New("end date must be a valid date")
		}
		p.EndDate = &end
	}

	return p, nil
}
