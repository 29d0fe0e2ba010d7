package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/colisso/internal/server/models"
	"github.com/dmitrijs2005/colisso/internal/server/services"
	"github.com/dmitrijs2005/colisso/internal/session"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	User         *models.User `json:"user"`
}

type sessionResponse struct {
	User             *models.User `json:"user"`
	ExpiresAt        time.Time    `json:"expiresAt"`
	RemainingSeconds int64        `json:"remainingSeconds"`
	Warning          bool         `json:"warning"`
	Critical         bool         `json:"critical"`
	Expired          bool         `json:"expired"`
}

func toTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken, ExpiresAt: p.ExpiresAt, User: p.User}
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.svc.Users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.failErr(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", u.ID)
	c.JSON(http.StatusCreated, u)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := s.svc.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(pair))
}

func (s *HTTPServer) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusBadRequest, "refresh token is required")
		return
	}

	pair, err := s.svc.Users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toTokenResponse(pair))
}

// logout revokes the refresh token in the body, if any. The access token
// simply runs out.
func (s *HTTPServer) logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.svc.Users.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		s.failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) session(c *gin.Context) {
	cl := claims(c)
	if cl == nil {
		fail(c, http.StatusUnauthorized, "invalid token")
		return
	}

	u, err := s.svc.Users.Get(c.Request.Context(), cl.UserID)
	if err != nil {
		s.failErr(c, err)
		return
	}

	st := session.Evaluate(cl.Expiry(), s.now())
	c.JSON(http.StatusOK, sessionResponse{
		User:             u,
		ExpiresAt:        st.ExpiresAt,
		RemainingSeconds: st.RemainingSeconds(),
		Warning:          st.Warning,
		Critical:         st.Critical,
		Expired:          st.Expired,
	})
}
