package api

import "github.com/tensorplex-labs/reviewsim/pkg/simapi"

func createResponse[T any](body T, err error) simapi.StdResponse[T] {
	if err != nil {
		errMsg := err.Error()
		return simapi.StdResponse[T]{
			Body:  body,
			Error: &errMsg,
		}
	}
	return simapi.StdResponse[T]{Body: body}
}
