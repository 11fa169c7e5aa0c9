package aluguel

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		act     Action
		want    OrderStatus
		wantErr error
	}{
		{StatusPendente, ActionAvaliar, StatusEmAnalise, nil},
		{StatusEmAnalise, ActionAvaliar, StatusEmAnalise, ErrInvalidTransition},
		{StatusPendente, ActionAprovar, StatusAprovado, nil},
		{StatusEmAnalise, ActionAprovar, StatusAprovado, nil},
		{StatusEmAnalise, ActionRejeitar, StatusRejeitado, nil},
		{StatusAprovado, ActionRejeitar, StatusAprovado, ErrInvalidTransition},
		{StatusAprovado, ActionCancelar, StatusCancelado, nil},
		{StatusCancelado, ActionCancelar, StatusCancelado, ErrInvalidTransition},
		{StatusCancelado, ActionAprovar, StatusCancelado, ErrInvalidTransition},
		{StatusPendente, Action("x"), StatusPendente, ErrUnknownAction},
	}

	for _, tt := range tests {
		got, err := Transition(tt.from, tt.act)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Transition(%s, %s) error = %v, want %v", tt.from, tt.act, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.act, got, tt.want)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	if !StatusEmAnalise.Valid() {
		t.Error("EM_ANALISE should be valid")
	}
	if OrderStatus("DONE").Valid() {
		t.Error("DONE should not be valid")
	}
}
