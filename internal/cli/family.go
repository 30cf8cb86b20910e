package cli

import (
	"context"
	"fmt"
	"strings"

	"livetsstemme/internal/cli/scheme/colours"
	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/story/nest"
)

func (a *App) FamilyInvite(ctx context.Context, email, relationship string, permissions []string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	m, err := a.nest.InviteFamilyMember(ctx, u.ID, nest.Invite{
		Email:        email,
		Relationship: relationship,
		Permissions:  permissions,
	})
	if err != nil {
		return err
	}
	colours.Success.Fprintf(a.out, "💌 Invitasjon sendt til %s\n", m.Email)
	colours.Info.Fprintf(a.out, "   ID: %s\n", m.ID)
	return nil
}

func statusColour(s user.InviteStatus) func(format string, a ...any) string {
	switch s {
	case user.InviteAccepted:
		return colours.Success.Sprintf
	case user.InviteDeclined:
		return colours.Error.Sprintf
	}
	return colours.Warning.Sprintf
}

func (a *App) FamilyList(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	colours.Title.Fprintln(a.out, "👪 Familie")
	if len(u.FamilyMembers) == 0 {
		colours.Warning.Fprintln(a.out, "Ingen familiemedlemmer ennå.")
		return nil
	}
	for _, m := range u.FamilyMembers {
		perms := make([]string, len(m.Permissions))
		for i, p := range m.Permissions {
			perms[i] = string(p)
		}
		fmt.Fprintf(a.out, "  • %s <%s> %s [%s] %s\n",
			m.Name, m.Email, m.Relationship, strings.Join(perms, ","),
			statusColour(m.InviteStatus)("%s", m.InviteStatus))
	}
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	d, err := a.nest.Dashboard(ctx, u.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	colours.Title.Fprintf(a.out, "🏠 Hei, %s!\n", d.User.Name)
	fmt.Fprintf(a.out, "  Historier:        %d\n", d.Summary.Count)
	fmt.Fprintf(a.out, "  Total lengde:     %s\n", story.FormatLongDuration(d.Summary.TotalDuration))
	fmt.Fprintf(a.out, "  Avspillinger:     %d\n", d.Summary.TotalPlays)
	fmt.Fprintf(a.out, "  Ventende invitasjoner: %d\n", d.PendingInvites)
	if len(d.Recent) > 0 {
		fmt.Fprintln(a.out)
		colours.Prompt.Fprintln(a.out, "Siste historier:")
		for i, s := range d.Recent {
			a.printStory(i+1, s)
		}
	}
	return nil
}

func (a *App) Prompts(category string) error {
	if category == "" {
		colours.Title.Fprintln(a.out, "💭 Kategorier")
		for _, c := range a.nest.PromptCategories() {
			fmt.Fprintf(a.out, "  • %s\n", c)
		}
		return nil
	}

	prompts := a.nest.Prompts(category)
	if len(prompts) == 0 {
		colours.Warning.Fprintf(a.out, "Ingen spørsmål for %q.\n", category)
		return nil
	}
	colours.Title.Fprintf(a.out, "💭 %s\n", category)
	for _, p := range prompts {
		colours.Prompt.Fprintf(a.out, "  %s\n", p.Question)
		for _, f := range p.FollowUp {
			fmt.Fprintf(a.out, "    – %s\n", f)
		}
	}
	return nil
}
