package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type stubSubscriptions struct {
	active bool
}

func (s stubSubscriptions) HasActiveSubscription(uint) bool { return s.active }

type stubCatalog struct {
	freeLessons map[uint]bool
}

func (s stubCatalog) IsLessonFree(id uint) (bool, error) { return s.freeLessons[id], nil }

func lessonRouter(claims *util.Claims, subs SubscriptionChecker, catalog LessonCatalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/lessons/:id/playback",
		func(c *gin.Context) {
			if claims != nil {
				c.Set("user", claims)
			}
		},
		LessonAccessMiddleware(subs, catalog),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestLessonAccessMiddleware(t *testing.T) {
	catalog := stubCatalog{freeLessons: map[uint]bool{7: true}}

	tests := []struct {
		name       string
		claims     *util.Claims
		subscribed bool
		path       string
		wantStatus int
	}{
		{"guest rejected", nil, false, "/lessons/7/playback", http.StatusUnauthorized},
		{"free lesson without subscription", &util.Claims{UserID: 1, Role: model.Student}, false, "/lessons/7/playback", http.StatusOK},
		{"premium lesson without subscription", &util.Claims{UserID: 1, Role: model.Student}, false, "/lessons/8/playback", http.StatusPaymentRequired},
		{"premium lesson with subscription", &util.Claims{UserID: 1, Role: model.Student}, true, "/lessons/8/playback", http.StatusOK},
		{"instructor bypasses the gate", &util.Claims{UserID: 2, Role: model.Instructor}, false, "/lessons/8/playback", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := lessonRouter(tt.claims, stubSubscriptions{active: tt.subscribed}, catalog)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSubscriptionMiddleware_BlocksUnsubscribedStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/assessments/1",
		func(c *gin.Context) { c.Set("user", &util.Claims{UserID: 5, Role: model.Student}) },
		SubscriptionMiddleware(stubSubscriptions{active: false}),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assessments/1", nil))
	if w.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want %d", w.Code, http.StatusPaymentRequired)
	}
}
