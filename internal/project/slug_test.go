package project_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vasiliy-maslov/portfolio-service/internal/project"
)

func TestGenerateSlug(t *testing.T) {
	at := time.Unix(1700000000, 0)

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "My App", want: "my-app-1700000000"},
		{name: "numbers kept", title: "My App 2", want: "my-app-2-1700000000"},
		{name: "punctuation stripped", title: "Hello, World!", want: "hello-world-1700000000"},
		{name: "repeated spaces collapse", title: "Go   Service", want: "go-service-1700000000"},
		{name: "existing hyphens collapse", title: "Real-time -- Chat", want: "real-time-chat-1700000000"},
		{name: "non ascii removed", title: "Café Órbita", want: "caf-rbita-1700000000"},
		{name: "markup removed", title: "<b>Bold</b>", want: "bboldb-1700000000"},
		{name: "kelvin sign dropped", title: "\u212Aelvin Scale", want: "elvin-scale-1700000000"},
		{name: "non ascii capitals dropped", title: "ÉTÉ App", want: "t-app-1700000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, project.GenerateSlug(tt.title, at))
		})
	}
}

func TestGenerateSlug_ChangesWithTime(t *testing.T) {
	first := project.GenerateSlug("My App", time.Unix(1700000000, 0))
	second := project.GenerateSlug("My App", time.Unix(1700000001, 0))
	assert.NotEqual(t, first, second)
}
