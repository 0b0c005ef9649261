package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySignificantWeather(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"HVY TSRA", "+TSRA"},
		{"FBL TSRA", "-TSRA"},
		{"MOD TSRA", "TSRA"},
		{"TSRA", "TSRA"},
		{"HVY TS", "+TS"},
		{"FBL TS", "-TS"},
		{"MOD TS", "TS"},
		{"TS", "TS"},
		{"+TSRA BR", "+TSRA"},
		{"-TS", "-TS"},
		{"tsra=", "TSRA"},
		{"HVY TSRA TS FCST", "+TSRA"},
		{"TS HVY TSRA", "+TSRA"},
		{"FBL TSRA HVY TS", "-TSRA"},
		{"SFC WSPD 20KT MAX35 FROM SW GUSTS", ""},
		{"VCTS", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySignificantWeather(tt.text))
		})
	}
}
