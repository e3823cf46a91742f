package jsonschema

import (
	"encoding/base64"
	"encoding/hex"
	"sync"
)

// Decoder returns the bytes represented by an encoded string.
type Decoder func(string) ([]byte, error)

var decoders = struct {
	sync.RWMutex
	m map[string]Decoder
}{m: map[string]Decoder{
	"base64":    base64.StdEncoding.DecodeString,
	"base64url": base64.URLEncoding.DecodeString,
	"base16":    hex.DecodeString,
}}

// RegisterDecoder registers d for contentEncoding name.
func RegisterDecoder(name string, d Decoder) {
	decoders.Lock()
	defer decoders.Unlock()
	decoders.m[name] = d
}

// GetDecoder returns the Decoder registered for contentEncoding name.
func GetDecoder(name string) (Decoder, bool) {
	decoders.RLock()
	defer decoders.RUnlock()
	d, ok := decoders.m[name]
	return d, ok
}
