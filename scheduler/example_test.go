package scheduler_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/genops/scheduler"
)

func ExampleDo() {
	s := scheduler.New(scheduler.DefaultConfig())
	defer s.Close(context.Background())

	summary, err := scheduler.Do(context.Background(), s, func(ctx context.Context) (string, error) {
		return "Seasoned backend engineer", nil
	})
	fmt.Println(summary, err)
	// Output:
	// Seasoned backend engineer <nil>
}
