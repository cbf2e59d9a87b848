package automod

import (
	"github.com/truemoder/truemoder/automod/chat"
	"github.com/truemoder/truemoder/automod/engine"
	"github.com/truemoder/truemoder/automod/jail"
)

type Engine = engine.Engine
type Config = engine.Config
type Classifier = engine.Classifier
type ClassifierFunc = engine.ClassifierFunc
type CommandKind = engine.CommandKind
type Outcome = engine.Outcome

type Notifier = engine.Notifier
type SlackNotifier = engine.SlackNotifier
type Sanction = engine.Sanction

type EventContext = engine.EventContext

type Client = chat.Client
type Message = chat.Message
type User = chat.User
type Chat = chat.Chat

var (
	NewEngine     = engine.NewEngine
	DefaultConfig = engine.DefaultConfig

	CommandBan  = engine.CommandBan
	CommandMute = engine.CommandMute

	TierWarn = jail.TierWarn
	TierMute = jail.TierMute
	TierBan  = jail.TierBan
)
