package classify

import (
	"testing"

	"quote_bot/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		probe ProbeFunc
		want  model.Kind
	}{
		{
			name: "buying phrase",
			text: "Куплю iPhone 16 Pro 256",
			want: model.KindProduct,
		},
		{
			name: "selling wins over buying",
			text: "Продам iPhone 15, куплю iPhone 16",
			want: model.KindSpam,
		},
		{
			name: "reservation is silent",
			text: "Бронь за мной",
			want: model.KindSilent,
		},
		{
			name: "taken is silent",
			text: "Взял, спасибо",
			want: model.KindSilent,
		},
		{
			name: "four line price list",
			text: "iPhone 15 128 - 52 000\niPhone 15 256 - 58 000\niPhone 16 128 - 64 000\niPhone 16 256 - 71 000",
			want: model.KindSpam,
		},
		{
			name: "job offer",
			text: "Есть работа, пишите в лс",
			want: model.KindSpam,
		},
		{
			name: "crypto",
			text: "Обменяю usdt по курсу",
			want: model.KindSpam,
		},
		{
			name: "broadcast ad",
			text: "Делаю рассылки по чатам",
			want: model.KindSpam,
		},
		{
			name: "bare link",
			text: "Смотри тут https://example.com/deal",
			want: model.KindSpam,
		},
		{
			name: "mention only first line is allowed",
			text: "@seller привет\nНужен iPad Air 11",
			want: model.KindProduct,
		},
		{
			name: "payment keywords",
			text: "Скинь паспорт и оплату вперед",
			want: model.KindSpam,
		},
		{
			name: "attention emoji flood",
			text: "Лучшие цены 🔥🔥🔥🔥🔥🔥 пиши",
			want: model.KindSpam,
		},
		{
			name: "product hint without intent word",
			text: "iphone 16 pro max 256 белый",
			want: model.KindProduct,
		},
		{
			name:  "probe resolves unknown product",
			text:  "Станция Миди 2",
			probe: func(string) bool { return true },
			want:  model.KindProduct,
		},
		{
			name:  "probe negative falls back to spam",
			text:  "привет всем",
			probe: func(string) bool { return false },
			want:  model.KindSpam,
		},
		{
			name: "nil probe falls back to spam",
			text: "привет всем",
			want: model.KindSpam,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.text, tt.probe); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyPriceHeuristics(t *testing.T) {
	tests := []struct {
		name string
		text string
		spam bool
	}{
		{
			name: "two currency prices",
			text: "Отдам за 52 000 ₽ или 58 000 ₽ с чеком",
			spam: true,
		},
		{
			name: "two sim price lines",
			text: "iPhone 16 esim - 64 000\niPhone 16 2sim - 66 000",
			spam: true,
		},
		{
			name: "single product line with storage is not a price list",
			text: "Нужен iPhone 16 Pro 256",
			spam: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text, nil)
			if tt.spam && got != model.KindSpam {
				t.Errorf("Classify(%q) = %q, want spam", tt.text, got)
			}
			if !tt.spam && got == model.KindSpam {
				t.Errorf("Classify(%q) = spam, want non-spam", tt.text)
			}
		})
	}
}
