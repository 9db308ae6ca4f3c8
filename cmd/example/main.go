// Example: basic coroutine usage
//
// This example demonstrates the fundamental usage of the runtime:
// - Creating coroutines and submitting them to a new scheduler
// - Driving a pass with TrySchedule
// - Reading each finished coroutine's result
// - Delaying a coroutine so it runs on a later pass
//
// Run with: go run ./cmd/example/
package main

import (
	"fmt"
	"time"

	"github.com/loongs-zhang/open-coroutine-go/coroutine"
	"github.com/loongs-zhang/open-coroutine-go/scheduler"
)

func main() {
	sched := scheduler.New()

	for i := 0; i < 3; i++ {
		i := i
		c, err := coroutine.New(func(param any) any {
			fmt.Printf("coroutine %d: running with param %v\n", i, param)
			return i * i
		}, i)
		if err != nil {
			panic(err)
		}
		sched.Submit(c)
	}

	delayed, err := coroutine.New(func(param any) any {
		fmt.Println("delayed coroutine: finally running")
		return "late"
	}, nil)
	if err != nil {
		panic(err)
	}
	sched.Delay(int64(200*time.Millisecond), delayed)

	finished := sched.TrySchedule()
	fmt.Printf("first pass finished %d coroutines\n", len(finished))
	for _, c := range finished {
		fmt.Printf("  coroutine %d -> %v\n", c.ID(), c.Result())
	}

	time.Sleep(250 * time.Millisecond)
	finished = sched.TrySchedule()
	fmt.Printf("second pass finished %d coroutines\n", len(finished))
	for _, c := range finished {
		fmt.Printf("  coroutine %d -> %v\n", c.ID(), c.Result())
	}
}
