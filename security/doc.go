// Package security holds the TLS settings of backend connections.
//
//	tls:
//	  ca_file: /etc/whisper/ca.pem
//	  cert_file: /etc/whisper/gateway.pem
//	  key_file: /etc/whisper/gateway-key.pem
//	  min_version: "1.3"
//
// TLSConfig.Build turns them into a *tls.Config for net/http and nats.go.
package security
