package api

import (
	"context"
	"errors"
	"io"
	"testing"

	"bitwise74/zeropass/middleware"
	"bitwise74/zeropass/model"
	"bitwise74/zeropass/security"
	"bitwise74/zeropass/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	links map[string]string // email -> last link
	codes map[string]string // phone -> last code
	fail  bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{links: map[string]string{}, codes: map[string]string{}}
}

func (f *fakeNotifier) SendLoginLink(email, link string) error {
	if f.fail {
		return errors.New("smtp down")
	}

	f.links[email] = link
	return nil
}

func (f *fakeNotifier) SendLoginCode(phone, code string) error {
	if f.fail {
		return errors.New("sms down")
	}

	f.codes[phone] = code
	return nil
}

type fakeBlobs struct {
	objects map[string]int64
	failPut bool
}

func (f *fakeBlobs) Put(_ context.Context, key string, body io.Reader, size int64, _ string) error {
	if f.failPut {
		return errors.New("blob store unavailable")
	}

	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}

	f.objects[key] = size
	return nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

// newTestAPI wires the full route table against an in-memory database
// and fakes for mail/SMS and blob storage.
func newTestAPI(t *testing.T, maxUsage int64) (*API, *fakeNotifier, *fakeBlobs) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("upload.max_size", int64(50<<20))
	viper.Set("host.base_url", "http://localhost:8080")

	db, err := gorm.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(model.User{}, model.MailToken{}, model.OtpCode{}, model.File{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	notify := newFakeNotifier()
	blobs := &fakeBlobs{objects: map[string]int64{}}

	a := &API{
		DB:       db,
		Creds:    security.NewCredentials(db),
		Sessions: security.NewSessions([]byte("test-secret")),
		Identity: service.NewIdentity(db),
		Quota:    service.NewQuota(db, maxUsage),
		Notify:   notify,
	}
	a.Uploads = service.NewUploads(db, blobs, a.Quota)

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())
	a.Router = router

	jwt := middleware.NewJWTMiddleware(a.Sessions, a.Identity)

	main := router.Group("/api")
	main.HEAD("/heartbeat", a.Heartbeat)
	main.HEAD("/validate", jwt, a.Validate)

	auth := main.Group("/auth")
	auth.POST("/mail/request", a.AuthMailRequest)
	auth.GET("/mail/verify", a.AuthMailVerify)
	auth.POST("/otp/request", a.AuthOtpRequest)
	auth.POST("/otp/verify", a.AuthOtpVerify)

	files := main.Group("/files", jwt)
	files.GET("", a.FileList)
	files.POST("", a.FileUpload)
	files.GET("/usage", cachePerUser(30), a.FileUsage)

	return a, notify, blobs
}
