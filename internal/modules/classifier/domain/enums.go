//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// ErrorKind classifies why a classification call produced no verdict
// ENUM(config,client,parse,remote,connection,exhausted)
type ErrorKind string
