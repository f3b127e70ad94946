package logcmds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bitlog.go/pkg/bitlog"
)

func TestFormatStatus(t *testing.T) {
	l := bitlog.New(nil)
	l.Init(0xbeef)
	require.NoError(t, l.WriteData(0x5, 3))
	require.Equal(t,
		"source beef seq 0 bits 3/128\n101\nsent 0 (errors 0) dropped 0 bits 3\n",
		FormatStatus(l))
}
