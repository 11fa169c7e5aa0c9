package ledger

import (
	"fmt"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/notify"
)

const (
	kindCoinsReceived = "coins_received"
	kindCoinsSent     = "coins_sent"
	kindCoupon        = "coupon_issued"
)

func transferMessages(tx moeda.Transaction, prof *moeda.Professor, stu *moeda.Student) []notify.Message {
	var msgs []notify.Message
	profName := tx.ProfessorName
	if prof != nil {
		profName = prof.Name
	}
	stuName := tx.StudentName
	if stu != nil {
		stuName = stu.Name
	}

	if stu != nil {
		msgs = append(msgs, notify.Message{
			Kind:    kindCoinsReceived,
			To:      stu.Email,
			ToName:  stu.Name,
			Subject: "Você recebeu moedas",
			Body: fmt.Sprintf("Olá %s,\n\nVocê recebeu %d moedas de %s.\nMotivo: %s\nSaldo atual: %d moedas.",
				stu.Name, tx.Amount, profName, tx.Reason, stu.CoinBalance),
		})
	}
	if prof != nil {
		msgs = append(msgs, notify.Message{
			Kind:    kindCoinsSent,
			To:      prof.Email,
			ToName:  prof.Name,
			Subject: "Envio de moedas confirmado",
			Body: fmt.Sprintf("Olá %s,\n\nVocê enviou %d moedas para %s.\nMotivo: %s\nSaldo atual: %d moedas.",
				prof.Name, tx.Amount, stuName, tx.Reason, prof.CoinBalance),
		})
	}
	return msgs
}

func redemptionMessage(red moeda.Redemption, stu *moeda.Student, adv *moeda.Advantage) notify.Message {
	to, name := red.StudentEmail, red.StudentName
	if stu != nil {
		to, name = stu.Email, stu.Name
	}
	title := red.AdvantageTitle
	if adv != nil {
		title = adv.Title
	}
	return notify.Message{
		Kind:    kindCoupon,
		To:      to,
		ToName:  name,
		Subject: "Seu cupom: " + title,
		Body: fmt.Sprintf("Olá %s,\n\nSeu resgate de \"%s\" foi confirmado.\nCódigo do cupom: %s\nApresente este código ao parceiro.",
			name, title, red.CouponCode),
	}
}
