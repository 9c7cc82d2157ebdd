package workflow

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/temporal"
)

// ErrorTypingInterceptor is a Temporal worker interceptor that wraps untyped
// activity errors with the activity name as the error type, so a failed
// activity shows its name in the Temporal UI instead of a generic
// "ApplicationError". Errors that already carry a type, such as the error
// kinds set by the backend activities, pass through untouched.
type ErrorTypingInterceptor struct {
	interceptor.WorkerInterceptorBase
}

func (e *ErrorTypingInterceptor) InterceptActivity(ctx context.Context, next interceptor.ActivityInboundInterceptor) interceptor.ActivityInboundInterceptor {
	return &errorTypingActivityInterceptor{next: next}
}

type errorTypingActivityInterceptor struct {
	interceptor.ActivityInboundInterceptorBase
	next interceptor.ActivityInboundInterceptor
}

func (e *errorTypingActivityInterceptor) Init(outbound interceptor.ActivityOutboundInterceptor) error {
	return e.next.Init(outbound)
}

func (e *errorTypingActivityInterceptor) ExecuteActivity(ctx context.Context, in *interceptor.ExecuteActivityInput) (interface{}, error) {
	result, err := e.next.ExecuteActivity(ctx, in)
	if err == nil {
		return result, nil
	}

	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() != "" {
		return result, err
	}

	name := activity.GetInfo(ctx).ActivityType.Name
	return result, temporal.NewApplicationError(err.Error(), name, err)
}
