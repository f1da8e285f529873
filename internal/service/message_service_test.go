package service

import (
	"context"
	"errors"
	"testing"

	"intranet-cesfam/backend/internal/dto"
	"intranet-cesfam/backend/internal/model"
	"intranet-cesfam/backend/internal/policy"
	"intranet-cesfam/backend/internal/validation"
	pkgerrors "intranet-cesfam/backend/pkg/errors"
)

func setupTestMessageService() (MessageService, *mocks, *model.User, *model.User) {
	m := newMocks()
	alice := m.addUser("Alicia Pérez", model.RoleStaff, 0, "x")
	bob := m.addUser("Bruno Tapia", model.RoleStaff, 0, "x")
	return NewMessageService(m.repo, nopLogger), m, alice, bob
}

func TestMessageService_Send_Success(t *testing.T) {
	svc, _, alice, bob := setupTestMessageService()

	result, err := svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: bob.ID, Body: " hola, ¿turno del sábado? "})
	if err != nil {
		t.Fatalf("Send should succeed: %v", err)
	}
	if result.Body != "hola, ¿turno del sábado?" || result.IsRead {
		t.Errorf("unexpected message: %+v", result)
	}
	if result.Sender == nil || result.Sender.ID != alice.ID || result.Recipient == nil || result.Recipient.ID != bob.ID {
		t.Errorf("unexpected participants: %+v / %+v", result.Sender, result.Recipient)
	}
}

func TestMessageService_Send_Invalid(t *testing.T) {
	svc, _, alice, bob := setupTestMessageService()

	if _, err := svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: alice.ID, Body: "yo"}); !errors.Is(err, ErrMessageToSelf) {
		t.Errorf("expected ErrMessageToSelf, got %v", err)
	}

	var verrs validation.Errors
	_, err := svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: bob.ID, Body: "   "})
	if !errors.As(err, &verrs) || !verrs.Has("body") {
		t.Errorf("expected body error, got %v", err)
	}

	_, err = svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: 999, Body: "hola"})
	if !errors.As(err, &verrs) || !verrs.Has("recipient_id") {
		t.Errorf("expected recipient_id error, got %v", err)
	}
}

func TestMessageService_InboxAndUnread(t *testing.T) {
	svc, _, alice, bob := setupTestMessageService()
	first, _ := svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: bob.ID, Body: "uno"})
	svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: bob.ID, Body: "dos"})

	count, err := svc.UnreadCount(context.Background(), actorOf(bob))
	if err != nil || count != 2 {
		t.Fatalf("expected 2 unread, got %d (%v)", count, err)
	}

	if err := svc.MarkRead(context.Background(), actorOf(bob), first.ID); err != nil {
		t.Fatalf("MarkRead should succeed: %v", err)
	}
	// idempotent
	if err := svc.MarkRead(context.Background(), actorOf(bob), first.ID); err != nil {
		t.Fatalf("second MarkRead should succeed: %v", err)
	}

	unread, total, err := svc.Inbox(context.Background(), actorOf(bob), &dto.MessageListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("Inbox should succeed: %v", err)
	}
	if total != 1 || unread[0].Body != "dos" {
		t.Errorf("expected only the unread message, got %+v", unread)
	}

	_, total, _ = svc.Inbox(context.Background(), actorOf(bob), &dto.MessageListRequest{})
	if total != 2 {
		t.Errorf("expected full inbox of 2, got %d", total)
	}
	_, total, _ = svc.Inbox(context.Background(), actorOf(alice), &dto.MessageListRequest{})
	if total != 0 {
		t.Errorf("sender inbox should be empty, got %d", total)
	}
	_, total, _ = svc.Sent(context.Background(), actorOf(alice), &dto.MessageListRequest{})
	if total != 2 {
		t.Errorf("expected 2 sent messages, got %d", total)
	}
}

func TestMessageService_MarkRead_OnlyRecipient(t *testing.T) {
	svc, _, alice, bob := setupTestMessageService()
	msg, _ := svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: bob.ID, Body: "hola"})

	err := svc.MarkRead(context.Background(), actorOf(alice), msg.ID)
	if !errors.Is(err, policy.ErrNotOwner) || !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("sender marking read: expected forbidden ErrNotOwner, got %v", err)
	}
}

func TestMessageService_GetByID_ThirdParty(t *testing.T) {
	svc, m, alice, bob := setupTestMessageService()
	carol := m.addUser("Carla Muñoz", model.RoleAdmin, 0, "x")
	msg, _ := svc.Send(context.Background(), actorOf(alice), &dto.SendMessageRequest{RecipientID: bob.ID, Body: "privado"})

	// not even an admin reads other people's messages
	if _, err := svc.GetByID(context.Background(), actorOf(carol), msg.ID); !errors.Is(err, ErrMessageNotFound) {
		t.Errorf("expected ErrMessageNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), actorOf(bob), msg.ID); err != nil {
		t.Errorf("recipient should read the message: %v", err)
	}
}
