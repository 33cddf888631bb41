package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sentinela-io/sentinela/server/auth"
	"github.com/sentinela-io/sentinela/server/models"
	"gorm.io/gorm"
)

type registerParams struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	Notify   bool   `json:"notify"`
}

// ---------------------------------------------------------------------------------//
// Auth handlers
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) register(rw http.ResponseWriter, r *http.Request) {
	data := registerParams{}
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(data); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid input", validationErrDetails(err)...)
		return
	}

	_, err := models.FindUserBy("email", data.Email)
	if err == nil {
		writeError(rw, http.StatusConflict, "email is already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	user := models.User{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
		Phone:    data.Phone,
		Notify:   data.Notify,
	}
	if err := models.CreateUser(&user); err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error registering user")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"message": "user registered successfully",
		"user": map[string]interface{}{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
	}, http.StatusCreated)
}

func (sentinelaApp *app) logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	if data["email"] == "" || data["password"] == "" {
		writeError(rw, http.StatusBadRequest, "email and password are required")
		return
	}

	passwordHash, err := models.FindUserPassword(data["email"])
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	// same response for unknown email & wrong password,
	// so account existence can't be probed
	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeError(rw, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user, err := models.FindUserBy("email", data["email"])
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	accessToken, err := auth.EncodeJWT(auth.NewAccessTokenClaims(user.ID, user.Email), sentinelaApp.jwtSecret)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error signing access token")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"user":        user,
		"accessToken": accessToken,
	}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// User handlers
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) findUserByEmail(rw http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(rw, http.StatusBadRequest, "email query param is required")
		return
	}

	user, err := models.FindUserBy("email", email)
	if err != nil {
		writeStoreError(rw, err, "user not found")
		return
	}

	writeResponse(rw, user, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Incident handlers
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) listIncidents(rw http.ResponseWriter, r *http.Request) {
	incidents, err := models.FetchIncidents()
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error fetching incidents")
		return
	}

	writeResponse(rw, incidents, http.StatusOK)
}

func (sentinelaApp *app) createIncident(rw http.ResponseWriter, r *http.Request) {
	incident := models.Incident{}
	if err := json.NewDecoder(r.Body).Decode(&incident); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(incident); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid input", validationErrDetails(err)...)
		return
	}

	if incident.Status != "" && !models.IncidentStatusNameMap[incident.Status] {
		writeError(rw, http.StatusBadRequest, "invalid incident status")
		return
	}

	if err := models.CreateIncident(&incident); err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error creating incident")
		return
	}

	writeResponse(rw, incident, http.StatusCreated)
}

func (sentinelaApp *app) findIncident(rw http.ResponseWriter, r *http.Request) {
	incident, err := models.FindIncident(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(rw, err, "incident not found")
		return
	}

	writeResponse(rw, incident, http.StatusOK)
}

func (sentinelaApp *app) updateIncident(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]interface{})
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}

	removeUnknownFields(data, map[string]bool{"type": true, "description": true, "status": true})
	if len(data) == 0 {
		writeError(rw, http.StatusBadRequest, "valid fields required")
		return
	}

	if status, ok := data["status"]; ok {
		statusName, isString := status.(string)
		if !isString || !models.IncidentStatusNameMap[statusName] {
			writeError(rw, http.StatusBadRequest, "invalid incident status")
			return
		}
	}

	incident, err := models.FindIncident(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(rw, err, "incident not found")
		return
	}

	if err := incident.Update(data); err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error updating incident")
		return
	}

	writeResponse(rw, incident, http.StatusOK)
}

func (sentinelaApp *app) deleteIncident(rw http.ResponseWriter, r *http.Request) {
	if err := models.DeleteIncident(mux.Vars(r)["id"]); err != nil {
		writeStoreError(rw, err, "incident not found")
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------------//
// Emergency contact handlers
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) listEmergencyContacts(rw http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	contacts, err := models.EmergencyContactsFor(userID)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error fetching emergency contacts")
		return
	}

	writeResponse(rw, contacts, http.StatusOK)
}

func (sentinelaApp *app) addEmergencyContact(rw http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	data := struct {
		ContactID uint `json:"contact_id"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}

	if data.ContactID == 0 {
		writeError(rw, http.StatusBadRequest, "contact_id is required")
		return
	}

	edge, err := models.AddEmergencyContact(userID, data.ContactID)
	switch {
	case errors.Is(err, models.ErrSelfContact),
		errors.Is(err, models.ErrContactNotRegistered),
		errors.Is(err, models.ErrDuplicateContact):
		writeError(rw, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error adding emergency contact")
		return
	}

	writeResponse(rw, edge, http.StatusCreated)
}

func (sentinelaApp *app) removeEmergencyContact(rw http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	contactID, err := strconv.ParseUint(mux.Vars(r)["contactId"], 10, 64)
	if err != nil {
		writeError(rw, http.StatusBadRequest, "invalid contact id")
		return
	}

	if err := models.RemoveEmergencyContact(userID, uint(contactID)); err != nil {
		writeStoreError(rw, err, "contact not found")
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------------//
// Notification handlers
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) listNotifications(rw http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	notifications, err := models.NotificationsForRecipient(userID)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error fetching notifications")
		return
	}

	writeResponse(rw, notifications, http.StatusOK)
}

func (sentinelaApp *app) markNotificationRead(rw http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	notification, err := models.FindNotification(mux.Vars(r)["id"], userID)
	if err != nil {
		writeStoreError(rw, err, "notification not found")
		return
	}

	if err := notification.MarkAsRead(); err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error updating notification")
		return
	}

	writeResponse(rw, notification, http.StatusOK)
}

func (sentinelaApp *app) triggerPanicAlert(rw http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := sentinelaApp.fanoutEngine.TriggerPanic(userID); err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "failed to send panic alert")
		return
	}

	writeResponse(rw, map[string]string{"message": "panic alert sent successfully"}, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Contact-form handlers
// --------------------------------------------------------------------------------//

func (sentinelaApp *app) createMessage(rw http.ResponseWriter, r *http.Request) {
	message := models.Message{}
	if err := json.NewDecoder(r.Body).Decode(&message); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validate.Struct(message); err != nil {
		writeError(rw, http.StatusBadRequest, "all fields are required", validationErrDetails(err)...)
		return
	}

	if err := models.CreateMessage(&message); err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error processing message")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"message": "message sent successfully",
		"data":    message,
	}, http.StatusCreated)
}

func (sentinelaApp *app) listMessages(rw http.ResponseWriter, r *http.Request) {
	messages, err := models.FetchMessages()
	if err != nil {
		logg.Error(err)
		writeError(rw, http.StatusInternalServerError, "error fetching messages")
		return
	}

	writeResponse(rw, map[string]interface{}{
		"success": true,
		"data":    messages,
	}, http.StatusOK)
}
