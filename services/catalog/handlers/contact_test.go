// Copyright (C) 2025 5thJohnson (dev@5thjohnson.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fifthjohnson/storefront/services/catalog/datatypes"
)

type fakeMessages struct {
	inserted []*datatypes.ContactMessage
	err      error
}

func (f *fakeMessages) InsertMessage(_ context.Context, m *datatypes.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	m.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, m)
	return nil
}

type recordingEmail struct {
	mu   sync.Mutex
	sent []string // "to|subject"
	done chan struct{}
}

func (r *recordingEmail) Send(_ context.Context, to, subject, _ string) error {
	r.mu.Lock()
	r.sent = append(r.sent, to+"|"+subject)
	r.mu.Unlock()
	if r.done != nil {
		close(r.done)
	}
	return nil
}

type recordingWhatsApp struct {
	mu    sync.Mutex
	texts []string
	done  chan struct{}
}

func (r *recordingWhatsApp) SendText(_ context.Context, phone, body string) error {
	r.mu.Lock()
	r.texts = append(r.texts, phone+"|"+body)
	r.mu.Unlock()
	if r.done != nil {
		close(r.done)
	}
	return nil
}

func contactRouter(st ContactStore, notifier ContactNotifier) *gin.Engine {
	router := gin.New()
	router.POST("/contact", SubmitContact(st, notifier, quietLogger()))
	return router
}

const contactBody = `{"name":"Ada","email":"ada@example.com","subject":"Order question","message":"Where is my hat?"}`

func postContact(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitContact_PersistsAndNotifies(t *testing.T) {
	messages := &fakeMessages{}
	email := &recordingEmail{done: make(chan struct{})}
	wa := &recordingWhatsApp{done: make(chan struct{})}
	router := contactRouter(messages, ContactNotifier{Email: email, WhatsApp: wa, AlertPhone: "+15550100"})

	w := postContact(router, contactBody)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	if len(messages.inserted) != 1 {
		t.Fatalf("inserted %d messages, want 1", len(messages.inserted))
	}
	if messages.inserted[0].Subject != "Order question" {
		t.Errorf("Subject = %q", messages.inserted[0].Subject)
	}

	// Notifications run in goroutines after the response is written.
	<-email.done
	<-wa.done
	email.mu.Lock()
	defer email.mu.Unlock()
	if len(email.sent) != 1 || !strings.HasPrefix(email.sent[0], "ada@example.com|") {
		t.Errorf("confirmation email = %v", email.sent)
	}
	wa.mu.Lock()
	defer wa.mu.Unlock()
	if len(wa.texts) != 1 || !strings.HasPrefix(wa.texts[0], "+15550100|") {
		t.Errorf("staff ping = %v", wa.texts)
	}
	if !strings.Contains(wa.texts[0], "Ada") || !strings.Contains(wa.texts[0], "Order question") {
		t.Errorf("staff ping should name the sender and subject: %s", wa.texts[0])
	}
}

func TestSubmitContact_NoChannelsConfigured(t *testing.T) {
	messages := &fakeMessages{}
	router := contactRouter(messages, ContactNotifier{})

	w := postContact(router, contactBody)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (notifications are optional)", w.Code)
	}
	if len(messages.inserted) != 1 {
		t.Error("the message must be persisted even with no channels")
	}
}

func TestSubmitContact_ValidationFailure(t *testing.T) {
	messages := &fakeMessages{}
	router := contactRouter(messages, ContactNotifier{})

	w := postContact(router, `{"name":"","email":"nope","subject":"","message":""}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(messages.inserted) != 0 {
		t.Error("invalid submissions must not be persisted")
	}
}

func TestSubmitContact_StoreFailure(t *testing.T) {
	email := &recordingEmail{}
	router := contactRouter(&fakeMessages{err: datatypes.Internal(context.DeadlineExceeded)},
		ContactNotifier{Email: email})

	w := postContact(router, contactBody)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	email.mu.Lock()
	defer email.mu.Unlock()
	if len(email.sent) != 0 {
		t.Error("no notification may be sent when the message was not persisted")
	}
}
