// Command planviz drives trapplan/planner over a synthetic move list and
// prints the committed accel/cruise/decel timing for each move, the way
// the teacher's rotation-test driver prints each step of a Dynamixel
// move. It exists to exercise the planner end-to-end without a CLI
// surface baked into the library itself.
package main

import (
	"flag"
	"fmt"
	"os"

	"trapplan/planner"
)

func main() {
	movesVal := flag.Int("moves", 8, "Number of synthetic moves to plan")
	distVal := flag.Float64("dist", 10.0, "Distance per move")
	cruiseVal := flag.Float64("cruise", 50.0, "Requested cruise velocity per move")
	accelVal := flag.Float64("accel", 1000.0, "Max acceleration")
	jerkVal := flag.Float64("jerk", 100000.0, "Max jerk")
	orderVal := flag.Int("order", 4, "Acceleration polynomial order (2, 4, or 6)")
	lazyVal := flag.Bool("lazy", true, "Plan lazily, flushing only what is provably final")
	flag.Parse()

	order := planner.Order4
	switch *orderVal {
	case 2:
		order = planner.Order2
	case 6:
		order = planner.Order6
	}

	fmt.Printf("Planning %d moves of distance %.3g at cruise %.3g, accel %.3g, jerk %.3g...\n",
		*movesVal, *distVal, *cruiseVal, *accelVal, *jerkVal)

	q := planner.New()
	for i := 0; i < *movesVal; i++ {
		junctionMaxV2 := *cruiseVal * *cruiseVal
		if i == *movesVal-1 {
			junctionMaxV2 = 0
		}
		err := q.Add(*distVal, junctionMaxV2, *cruiseVal, order, *accelVal, *accelVal, *jerkVal, 0, 0)
		if err != nil {
			fmt.Printf("Error adding move %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	ready, err := q.Plan(*lazyVal)
	if err != nil {
		fmt.Printf("Error planning: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d of %d moves ready to flush.\n", ready, *movesVal)

	tq := planner.NewTrapQueue()
	printTime := 0.0
	startPos := planner.Coord{}
	axesR := planner.Coord{X: 1}
	for i := 0; i < ready; i++ {
		ad, err := q.GetMove()
		if err != nil {
			fmt.Printf("Error fetching move %d: %v\n", i, err)
			os.Exit(1)
		}
		fmt.Printf("move %2d: accel_t=%.4g cruise_t=%.4g decel_t=%.4g cruise_v=%.4g\n",
			i, ad.AccelT, ad.CruiseT, ad.DecelT, ad.CruiseV)

		tq.Append(printTime, startPos, axesR, ad)
		moveT := ad.AccelT + ad.CruiseT + ad.DecelT
		printTime += moveT
		startPos.X += *distVal
	}

	fmt.Printf("Rendered %d output segments spanning %.4g seconds.\n", len(tq.Moves()), printTime)
}
