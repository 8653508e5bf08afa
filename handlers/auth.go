package handlers

import (
	"errors"
	"log"
	"net/http"

	"projectboard/models"
	"projectboard/utils"
)

// LoginPageHandler renders the login form. An anonymous session is created
// on first contact so the CSRF token embedded in the form has a session to
// be checked against later.
func LoginPageHandler(w http.ResponseWriter, r *http.Request, sessions *utils.SessionManager) {
	session, err := sessions.Current(r)
	if err != nil {
		log.Println("error reading session: ", err)
	}
	if session != nil && session.Authenticated {
		http.Redirect(w, r, "/?action=index", http.StatusSeeOther)
		return
	}

	if session == nil {
		session, err = sessions.Anonymous(w, r)
		if err != nil {
			log.Println("error creating session: ", err)
			http.Error(w, "Unable to start a session", http.StatusInternalServerError)
			return
		}
	}

	csrfToken, err := sessions.IssueCSRF(r.Context(), session)
	if err != nil {
		log.Println("error issuing csrf token: ", err)
		http.Error(w, "Unable to start a session", http.StatusInternalServerError)
		return
	}

	flash, err := sessions.PopFlash(r.Context(), session)
	if err != nil {
		log.Println("error reading flash message: ", err)
	}

	render(w, "login.html", models.PageData{
		CSRFtoken: csrfToken,
		Flash:     flash,
	})
}

// AuthenticateHandler processes the login form. Order matters: method
// check, CSRF, lockout, then credentials. A failed CSRF check never touches
// the attempt counter; it is not a credential failure.
func AuthenticateHandler(w http.ResponseWriter, r *http.Request, users utils.CredentialStore, sessions *utils.SessionManager, attempts *utils.LoginAttempts) {
	if r.Method != http.MethodPost {
		log.Println("login rejected: ", utils.ErrInvalidRequestMethod)
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return
	}

	session, err := sessions.Current(r)
	if err != nil {
		log.Println("error reading session: ", err)
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return
	}

	if !sessions.ValidateCSRF(session, r.FormValue("csrf_token")) {
		log.Println("login rejected: ", utils.ErrCSRFMismatch)
		if session != nil {
			if err := sessions.SetFlash(r.Context(), session, "Invalid request token. Please reload the page and try again."); err != nil {
				log.Println("error setting flash: ", err)
			}
		}
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return
	}

	clientKey := utils.ClientKey(r, session)
	user, err := utils.AuthenticateUser(r.Context(), users, attempts, clientKey, r.FormValue("idUser"), r.FormValue("password"))
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, utils.ErrRateLimited):
			msg = err.Error()
		case errors.Is(err, utils.ErrInvalidCredentials):
			// one message for unknown user and wrong password alike
			msg = "Invalid username or password."
		default:
			log.Println("login failed: ", err)
			msg = "Unable to log in right now. Please try again."
		}
		if err := sessions.SetFlash(r.Context(), session, msg); err != nil {
			log.Println("error setting flash: ", err)
		}
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return
	}

	if _, err := sessions.Start(w, r, user); err != nil {
		log.Println("error starting session: ", err)
		if err := sessions.SetFlash(r.Context(), session, "Unable to log in right now. Please try again."); err != nil {
			log.Println("error setting flash: ", err)
		}
		http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/?action=index&message=welcome", http.StatusSeeOther)
}

// LogOutHandler destroys the session and expires the cookie. Hitting it
// without a session just lands back on the login form.
func LogOutHandler(w http.ResponseWriter, r *http.Request, sessions *utils.SessionManager) {
	if err := sessions.Destroy(w, r); err != nil {
		log.Println("error destroying session: ", err)
	}
	http.Redirect(w, r, "/?action=login", http.StatusSeeOther)
}
