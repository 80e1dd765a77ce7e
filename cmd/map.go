/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/arnegrim/meshmap/config"
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Parse and validate a coupling configuration",
	Long: `Parses a coupling YAML file describing one or more mappings
(nearest-neighbor or RBF, under a consistent/conservative/scaled-consistent
constraint), builds each mapping from its configuration to catch unknown
families, kernels or constraints, and prints a summary.

meshmap map -f coupling.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if doProfile, _ := cmd.Flags().GetBool("profile"); doProfile {
			defer profile.Start(profile.CPUProfile).Stop()
		}

		configFile, _ := cmd.Flags().GetString("configFile")
		data, err := ioutil.ReadFile(configFile)
		if err != nil {
			fmt.Println(err)
			return
		}

		var c config.Coupling
		if err := c.Parse(data); err != nil {
			fmt.Println(err)
			return
		}
		c.Print()

		for _, m := range c.Mappings {
			if _, err := config.BuildMapping(m, c.Dimensions); err != nil {
				fmt.Printf("Mappings[%s]: %v\n", m.Name, err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().StringP("configFile", "f", "", "path to the coupling configuration YAML file")
	mapCmd.Flags().Bool("profile", false, "enable CPU profiling for the duration of the command")
}
