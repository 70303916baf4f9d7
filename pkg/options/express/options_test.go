package express

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, "PORT", o.PortEnv)
	assert.Equal(t, 5173, o.DefaultPort)
	assert.Equal(t, ModeRelease, o.Mode)
	assert.Empty(t, o.Validate())
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want int
	}{
		{name: "numeric", env: map[string]string{"PORT": "3001"}, want: 3001},
		{name: "absent", env: map[string]string{}, want: DefaultPort},
		{name: "non-numeric", env: map[string]string{"PORT": "abc"}, want: DefaultPort},
		{name: "empty", env: map[string]string{"PORT": ""}, want: DefaultPort},
		{name: "trailing garbage", env: map[string]string{"PORT": "3001abc"}, want: DefaultPort},
		{name: "surrounding whitespace", env: map[string]string{"PORT": " 8080 "}, want: 8080},
		{name: "zero is ephemeral", env: map[string]string{"PORT": "0"}, want: 0},
		{name: "negative", env: map[string]string{"PORT": "-1"}, want: DefaultPort},
		{name: "too large", env: map[string]string{"PORT": "70000"}, want: DefaultPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			assert.Equal(t, tt.want, o.ResolvePort(lookupFrom(tt.env)))
		})
	}
}

func TestResolvePortCustomEnv(t *testing.T) {
	o := NewOptions()
	o.ApplyOptions(WithPortEnv("HTTP_PORT"), WithDefaultPort(8100))

	env := map[string]string{"PORT": "3001", "HTTP_PORT": "9000"}
	assert.Equal(t, 9000, o.ResolvePort(lookupFrom(env)))
	assert.Equal(t, 8100, o.ResolvePort(lookupFrom(map[string]string{"PORT": "3001"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr int
		field   string
	}{
		{name: "valid", mutate: func(*Options) {}},
		{name: "empty port env", mutate: func(o *Options) { o.PortEnv = "" }, wantErr: 1, field: "port-env"},
		{name: "port out of range", mutate: func(o *Options) { o.DefaultPort = 70000 }, wantErr: 1, field: "default-port"},
		{name: "bad mode", mutate: func(o *Options) { o.Mode = "verbose" }, wantErr: 1, field: "mode"},
		{name: "zero shutdown timeout", mutate: func(o *Options) { o.ShutdownTimeout = 0 }, wantErr: 1, field: "shutdown-timeout"},
		{name: "ip host", mutate: func(o *Options) { o.Host = "127.0.0.1" }},
		{
			name: "multiple",
			mutate: func(o *Options) {
				o.PortEnv = ""
				o.ReadTimeout = -time.Second
			},
			wantErr: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOptions()
			tt.mutate(o)
			errs := o.Validate()
			require.Len(t, errs, tt.wantErr)
			if tt.field != "" {
				assert.Contains(t, errs[0].Error(), tt.field)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	var o *Options
	assert.Nil(t, o.Validate())
}

func TestComplete(t *testing.T) {
	o := NewOptions()
	o.Mode = " DEBUG "
	o.PortEnv = " PORT "
	require.NoError(t, o.Complete())
	assert.Equal(t, ModeDebug, o.Mode)
	assert.Equal(t, "PORT", o.PortEnv)

	o.Mode = ""
	require.NoError(t, o.Complete())
	assert.Equal(t, ModeRelease, o.Mode)
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--express.port-env=APP_PORT",
		"--express.default-port=8080",
		"--express.host=127.0.0.1",
		"--express.shutdown-timeout=3s",
	}))
	assert.Equal(t, "APP_PORT", o.PortEnv)
	assert.Equal(t, 8080, o.DefaultPort)
	assert.Equal(t, "127.0.0.1", o.Host)
	assert.Equal(t, 3*time.Second, o.ShutdownTimeout)
}

func TestAddFlagsWithPrefix(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs, "edge")
	assert.NotNil(t, fs.Lookup("edge.express.default-port"))
}

func TestAddr(t *testing.T) {
	o := NewOptions()
	assert.Equal(t, ":5173", o.Addr(5173))
	o.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:0", o.Addr(0))
}
