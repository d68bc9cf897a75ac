package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestViperConfig_Getters(t *testing.T) {
	v := viper.New()
	v.Set("auth.issuer", "plunge")
	v.Set("auth.access_token_ttl", "15m")
	v.Set("ratelimit.rps", 2.5)
	v.Set("ratelimit.burst", 10)
	v.Set("server.dev_mode", true)

	cfg := New(v)

	if got := cfg.GetString("auth.issuer"); got != "plunge" {
		t.Errorf("GetString = %q", got)
	}
	if got := cfg.GetDuration("auth.access_token_ttl"); got != 15*time.Minute {
		t.Errorf("GetDuration = %v", got)
	}
	if got := cfg.GetFloat64("ratelimit.rps"); got != 2.5 {
		t.Errorf("GetFloat64 = %v", got)
	}
	if got := cfg.GetInt("ratelimit.burst"); got != 10 {
		t.Errorf("GetInt = %d", got)
	}
	if !cfg.GetBool("server.dev_mode") {
		t.Error("GetBool = false")
	}
	if cfg.IsSet("settings.history_limit") {
		t.Error("IsSet reported an unset key")
	}
}

func TestViperConfig_GetStringSlice(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "yaml list", value: []string{"shop.example.com", "*.powerplunge.com"}, want: []string{"shop.example.com", "*.powerplunge.com"}},
		{name: "comma separated env", value: "shop.example.com,*.powerplunge.com", want: []string{"shop.example.com", "*.powerplunge.com"}},
		{name: "empty", value: "", want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			v.Set("server.allowed_origins", tc.value)
			got := New(v).GetStringSlice("server.allowed_origins")
			if len(got) != len(tc.want) {
				t.Fatalf("GetStringSlice = %q, want %q", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("GetStringSlice[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestViperConfig_Sub(t *testing.T) {
	v := viper.New()
	v.Set("ratelimit.rps", 5)
	v.Set("ratelimit.burst", 20)

	sub := New(v).Sub("ratelimit")
	if got := sub.GetInt("burst"); got != 20 {
		t.Errorf("Sub().GetInt(burst) = %d, want 20", got)
	}

	missing := New(v).Sub("nope")
	if missing == nil {
		t.Fatal("Sub() of missing section returned nil")
	}
	if missing.IsSet("anything") {
		t.Error("missing section reports keys")
	}
}

func TestViperConfig_Unmarshal(t *testing.T) {
	v := viper.New()
	v.Set("host", "127.0.0.1")
	v.Set("port", 9090)

	var target struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	}
	if err := New(v).Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if target.Host != "127.0.0.1" || target.Port != 9090 {
		t.Errorf("Unmarshal() = %+v", target)
	}
}

func TestNew_NilViper(t *testing.T) {
	cfg := New(nil)
	if cfg.Viper() == nil {
		t.Fatal("New(nil) has no viper instance")
	}
}
