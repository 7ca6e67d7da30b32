package core_test

import (
	"context"
	"fmt"

	"github.com/leakhound/leakhound/pkg/core"
)

func ExampleScan() {
	res, err := core.Scan(context.Background(), core.Config{Root: "testdata/empty", NoCache: true})
	if err != nil {
		fmt.Println("scan failed:", err)
		return
	}
	fmt.Println(len(res.Findings), "finding(s)")
}
