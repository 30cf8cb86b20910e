package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/story/nest"
	"livetsstemme/internal/voice/elevenlabs"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type signInRequest struct {
	Email string `json:"email"`
}

type signInResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, sess, err := s.nest.SignIn(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := s.nest.SignOut(r.Context(), token); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMe(w http.ResponseWriter, _ *http.Request, u *user.User) {
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request, u *user.User) {
	var update user.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.nest.UpdateProfile(r.Context(), u.ID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := s.nest.DeleteAccount(r.Context(), u.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFamily(w http.ResponseWriter, _ *http.Request, u *user.User) {
	members := u.FamilyMembers
	if members == nil {
		members = []user.FamilyMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, u *user.User) {
	var in nest.Invite
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.nest.InviteFamilyMember(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.nest.RespondToInvite(r.Context(), u.ID, mux.Vars(r)["id"], req.Accept)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := s.nest.RemoveFamilyMember(r.Context(), u.ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryFrom(r *http.Request) (story.Query, error) {
	q := r.URL.Query()
	sort, err := story.ParseSort(q.Get("sort"))
	if err != nil {
		return story.Query{}, &nest.ValidationError{Message: err.Error()}
	}
	return story.Query{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     sort,
	}, nil
}

func (s *Server) handleFamilyStories(w http.ResponseWriter, r *http.Request, u *user.User) {
	q, err := queryFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stories, err := s.nest.FamilyStories(r.Context(), u.ID, mux.Vars(r)["ownerID"], q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request, u *user.User) {
	q, err := queryFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stories, err := s.nest.ListStories(r.Context(), u.ID, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleSaveStory(w http.ResponseWriter, r *http.Request, u *user.User) {
	var in story.Story
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.nest.SaveStory(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleUpdateStory(w http.ResponseWriter, r *http.Request, u *user.User) {
	var in story.Story
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = mux.Vars(r)["id"]
	if _, err := s.nest.GetStory(r.Context(), u.ID, in.ID); err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.nest.SaveStory(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request, u *user.User) {
	st, err := s.nest.GetStory(r.Context(), u.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStory(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := s.nest.DeleteStory(r.Context(), u.ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// splitTags accepts repeated tags fields as well as comma separated lists.
func splitTags(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request, u *user.User) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, r, &nest.ValidationError{Message: "invalid multipart form: " + err.Error()})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, r, &nest.ValidationError{Message: "audio recording is required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, &nest.ValidationError{Message: "failed to read audio"})
		return
	}

	duration := 0
	if d := r.FormValue("duration"); d != "" {
		if duration, err = strconv.Atoi(d); err != nil {
			writeError(w, r, &nest.ValidationError{Message: "duration must be a whole number of seconds"})
			return
		}
	}

	st, err := s.nest.RecordStory(r.Context(), u.ID, nest.Recording{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Tags:        splitTags(r.MultipartForm.Value["tags"]),
		Duration:    duration,
		Audio:       data,
		Filename:    header.Filename,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request, u *user.User) {
	st, err := s.nest.PlayStory(r.Context(), u.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request, u *user.User) {
	f, path, err := s.nest.OpenAudio(r.Context(), u.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()
	http.ServeContent(w, r, filepath.Base(path), time.Time{}, f)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req nest.ShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.nest.ShareStory(r.Context(), u.ID, mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	st, err := s.nest.SharedStory(r.Context(), mux.Vars(r)["id"], r.Header.Get("X-Share-Password"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, u *user.User) {
	d, err := s.nest.Dashboard(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handlePrompts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeJSON(w, http.StatusOK, map[string][]string{"categories": s.nest.PromptCategories()})
		return
	}
	writeJSON(w, http.StatusOK, s.nest.Prompts(category))
}

func (s *Server) handleSuggestedTags(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, story.SuggestedTags)
}

// handleVoiceClone proxies a voice sample to the cloning provider and keeps
// the provider's status and body on rejection.
func (s *Server) handleVoiceClone(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing audio file or voice name"})
		return
	}

	var sample io.Reader
	if file, _, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		sample = file
	}

	// Signed in callers get the voice stored on their profile.
	userID := ""
	if token := bearerToken(r); token != "" {
		if u, err := s.nest.CurrentUser(r.Context(), token); err == nil {
			userID = u.ID
		}
	}

	body, err := s.nest.CloneVoice(r.Context(), userID, r.FormValue("voiceName"), sample)
	if err != nil {
		var apiErr *elevenlabs.APIError
		switch {
		case errors.Is(err, nest.ErrInvalid):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		case errors.Is(err, elevenlabs.ErrNoAPIKey):
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: elevenlabs.ErrNoAPIKey.Error()})
		case errors.As(err, &apiErr):
			writeJSON(w, apiErr.Status, errorBody{Error: apiErr.Body})
		default:
			logrus.WithError(err).Error("Voice clone failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to clone voice"})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
