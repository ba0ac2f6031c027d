// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// [START program]
// The least_cost_feed command computes the cheapest blend of a formulation table and prints it.
// Without -formulation it solves the built-in grower diet.
package main

import (
	"flag"
	"fmt"

	log "github.com/golang/glog"

	"github.com/agroformula/feedmix/feed"
	"github.com/agroformula/feedmix/feed/loader"
	"github.com/agroformula/feedmix/lp/simplex"
)

var (
	formulation = flag.String("formulation", "", "YAML, TOML or JSON formulation table; the built-in grower diet when empty")
	exportLP    = flag.Bool("export_lp", false, "print the linear program in LP format before solving")
)

// [START data]
func growerDiet() *feed.Formulation {
	return &feed.Formulation{
		Name: "grower",
		Ingredients: []feed.Ingredient{
			{Name: "corn", Cost: 2.8, Nutrients: map[feed.Nutrient]float64{feed.CrudeProtein: 9.5, feed.DigestibleEnergy: 14.2, feed.Calcium: 0.02, feed.Phosphorus: 0.25}},
			{Name: "soybean meal", Cost: 4.5, Nutrients: map[feed.Nutrient]float64{feed.CrudeProtein: 46.5, feed.DigestibleEnergy: 13.0, feed.Calcium: 0.30, feed.Phosphorus: 0.60}},
			{Name: "wheat bran", Cost: 2.2, Nutrients: map[feed.Nutrient]float64{feed.CrudeProtein: 17.5, feed.DigestibleEnergy: 11.8, feed.Calcium: 0.10, feed.Phosphorus: 0.45}},
			{Name: "limestone", Cost: 0.5, Nutrients: map[feed.Nutrient]float64{feed.CrudeProtein: 0, feed.DigestibleEnergy: 0, feed.Calcium: 38.0, feed.Phosphorus: 0}},
			{Name: "fish meal", Cost: 13.2, Nutrients: map[feed.Nutrient]float64{feed.CrudeProtein: 68.0, feed.DigestibleEnergy: 10.7, feed.Calcium: 5.0, feed.Phosphorus: 3.0}},
		},
		Requirements: []feed.Requirement{
			{Nutrient: feed.CrudeProtein, Min: 14.0},
			{Nutrient: feed.DigestibleEnergy, Min: 13.0},
			{Nutrient: feed.Calcium, Min: 0.80},
			{Nutrient: feed.Phosphorus, Min: 0.45},
		},
	}
}

// [END data]

func leastCostFeed() error {
	f := growerDiet()
	if *formulation != "" {
		var err error
		if f, err = loader.Load(*formulation); err != nil {
			return fmt.Errorf("failed to load the formulation: %w", err)
		}
	}

	if *exportLP {
		m, err := feed.BuildModel(*f)
		if err != nil {
			return fmt.Errorf("failed to build the model: %w", err)
		}
		text, err := m.LP.ExportLPFormat()
		if err != nil {
			return fmt.Errorf("failed to export the model: %w", err)
		}
		fmt.Println(text)
	}

	res, err := feed.Formulate(simplex.New(), *f)
	if err != nil {
		return fmt.Errorf("failed to formulate %q: %w", f.Name, err)
	}

	fmt.Printf("Least-cost blend for %s:\n", res.Name)
	for _, s := range res.Shares {
		fmt.Printf("%s: %s %%\n", s.Ingredient, s.Rounded.StringFixed(feed.DefaultDisplayPrecision))
	}
	fmt.Println("\nNutrient levels:")
	for _, l := range res.Levels {
		if l.HasRequirement {
			fmt.Printf("%s = %.2f (min %.2f)\n", l.Nutrient, l.Achieved, l.Required)
		} else {
			fmt.Printf("%s = %.2f\n", l.Nutrient, l.Achieved)
		}
	}
	fmt.Printf("\nUnit cost = %s\n", res.RoundedUnitCost.StringFixed(feed.DefaultCostPrecision))
	return nil
}

func main() {
	flag.Parse()
	if err := leastCostFeed(); err != nil {
		log.Exitf("leastCostFeed returned with error: %v", err)
	}
}

// [END program]
