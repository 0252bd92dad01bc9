// Package proto holds the protobuf contract of the auth service. The Go
// files are generated from auth.proto.
package proto

//go:generate protoc -I../.. --go_out=../.. --go_opt=paths=source_relative --go-grpc_out=../.. --go-grpc_opt=paths=source_relative internal/proto/auth.proto
