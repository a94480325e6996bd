// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and edit the Hedwig to OMP user table",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List linked users",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runUsersList(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Listing users failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add HEDWIG_ID OMP_ID",
	Short: "Link a Hedwig person to an OMP user",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runUsersAdd(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "Adding user failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddCmd)

	rootCmd.AddCommand(usersCmd)
}

func runUsersList(cmd *cobra.Command) error {
	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("users_list")

	dbClient, s, err := r.openStore()
	if err != nil {
		return err
	}
	defer dbClient.Close()

	users, err := s.GetAllUsers(context.Background())
	if err != nil {
		return err
	}

	ids := make([]int64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Hedwig ID", "OMP ID"})
	for _, id := range ids {
		table.Append([]string{strconv.FormatInt(id, 10), strconv.FormatInt(users[id], 10)})
	}
	table.Render()

	return nil
}

func parseIDs(args []string) (int64, int64, error) {
	hedwigID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Hedwig id %q", args[0])
	}

	ompID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid OMP id %q", args[1])
	}

	return hedwigID, ompID, nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	hedwigID, ompID, err := parseIDs(args)
	if err != nil {
		return err
	}

	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close("users_add")

	dbClient, s, err := r.openStore()
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if err := s.AddUser(context.Background(), hedwigID, ompID); err != nil {
		return err
	}

	r.logger.Security().AdminAction(actor(), "add_user", fmt.Sprintf("user/%d", hedwigID))
	fmt.Fprintf(cmd.OutOrStdout(), "linked Hedwig person %d to OMP user %d\n", hedwigID, ompID)

	return nil
}

func actor() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}

	return "unknown"
}
