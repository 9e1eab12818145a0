package bot

import (
	"context"

	"cockfight/pkg/fighter"
	"cockfight/pkg/pairing"
	"cockfight/pkg/presentation"

	"github.com/bwmarrin/discordgo"
)

// Session interface abstracts discordgo.Session for testing
type Session interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelTyping(channelID string, options ...discordgo.RequestOption) (err error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	UpdateStatusComplex(usd discordgo.UpdateStatusData) (err error)
}

// DiscordSession adapts discordgo.Session to the Session interface
type DiscordSession struct {
	*discordgo.Session
}

var _ Session = (*DiscordSession)(nil)

// Presenter renders the media around draws and conferences.
type Presenter interface {
	Portrait(ctx context.Context, f *fighter.Fighter) presentation.Photo
	Versus(id pairing.PairID, pair pairing.Pair) (presentation.Photo, error)
	MatchIntro(ctx context.Context, id pairing.PairID, pair pairing.Pair) string
	SceneImage(data []byte) []byte
}

var _ Presenter = (*presentation.Presenter)(nil)
