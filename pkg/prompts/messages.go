// Package prompts holds every user-facing message and every model prompt.
// User-facing texts are Ukrainian; image prompts are English.
package prompts

import (
	"fmt"
	"strings"

	"cockfight/pkg/fighter"
	"cockfight/pkg/pairing"
)

const IntroText = `Привіт, чемпіоне!

Ласкаво просимо до Dana CockFight - найепічнішого чемпіонату з бійок півнів!

Тут СПРАВЖНІ ПІВНІ зійдуться у славетному двобої, а їхні ВЛАСНИКИ та ТРЕНЕРИ будуть готувати своїх бійців до перемоги!

Як це працює:
1. /fighters - познайомся з усіма бійцями та їх тренерами
2. /draw - жеребкування: визначимо 3 пари для битви
3. /conference - прес-конференція наступної пари

Готовий до бою? Тоді починаємо!

Команда: /help - якщо забудеш команди`

const HelpText = `Доступні команди Dana CockFight:

/start - Привітання та опис бота
/fighters - Показати всіх 6 бійців (півні + їх власники)
/draw - Провести жеребкування на 3 пари
/conference - Прес-конференція наступної пари
/status - Стан жеребкування та прес-конференцій
/reset - Почати все спочатку
/help - Показати цю довідку

Порядок дій:
1. Спочатку подивись бійців (/fighters)
2. Проведи жеребкування (/draw)
3. Запускай прес-конференції (/conference)

Нехай переможе найсильніший півень!`

const (
	FightersIntroText = "Знайомтесь з бійцями чемпіонату Dana CockFight!"

	NoDrawYetText = `Спочатку проведи жеребкування!
Використай команду /draw щоб визначити пари бійців.`

	AllConferencesDoneText = `Всі прес-конференції вже відбулися!
Хочеш ще? Проведи нове жеребкування: /draw`

	ConferenceBusyText = "Прес-конференція вже триває, зачекай!"

	ConferenceResumeText = "Продовжуємо прес-конференцію!"

	RoundFailedText = `Цей раунд не вдалося згенерувати - півні охрипли.
Спробуй ще раз: /conference`

	ResetText = "Все скинуто. Жеребкування та прес-конференції почнуться спочатку."

	ErrorText = "Щось пішло не так. Спробуй ще раз трохи пізніше."

	drawIntro = `УВАГА! ЖЕРЕБКУВАННЯ ПРОВЕДЕНО!

Сьогодні на арені зустрінуться:`

	drawOutro = "Всі бої оголошено! Нехай переможе найсильніший!\n\nДалі: /conference"
)

// DrawAnnouncement lists the three fights of a fresh draw.
func DrawAnnouncement(p *pairing.Pairing) string {
	var sb strings.Builder
	sb.WriteString(drawIntro)
	sb.WriteString("\n")
	for i, pair := range p.Pairs() {
		fmt.Fprintf(&sb, "\nБІЙ %d:\n%s vs %s\n", i+1, pair.A.DisplayName, pair.B.DisplayName)
	}
	sb.WriteString("\n")
	sb.WriteString(drawOutro)
	return sb.String()
}

// FightHeader titles a fight's VS collage.
func FightHeader(id pairing.PairID, pair pairing.Pair) string {
	return fmt.Sprintf("БІЙ %d: %s VS %s", id.Number(), pair.A.DisplayName, pair.B.DisplayName)
}

func ConferenceStart(id pairing.PairID, pair pairing.Pair) string {
	return fmt.Sprintf(`ПРЕС-КОНФЕРЕНЦІЯ РОЗПОЧИНАЄТЬСЯ!

БІЙ %d: %s VS %s

Бійці, готові до словесного двобою?
Нехай почнеться ТРЕШ-ТОК!`, id.Number(), pair.A.DisplayName, pair.B.DisplayName)
}

// RoundHeader takes the 0-based round.
func RoundHeader(round int) string {
	return fmt.Sprintf("РАУНД %d", round+1)
}

// ConferenceResume opens a /conference that picks up a half-finished fight.
func ConferenceResume(id pairing.PairID, pair pairing.Pair) string {
	return ConferenceResumeText + "\n\n" + FightHeader(id, pair)
}

// SlotCaption is the text posted for one resolved slot.
func SlotCaption(speaker *fighter.Fighter, text string) string {
	return speaker.DisplayName + ":\n\n" + text
}

func ConferenceEnd(pair pairing.Pair, winner *fighter.Fighter) string {
	msg := fmt.Sprintf(`ПРЕС-КОНФЕРЕНЦІЯ ЗАВЕРШЕНА!

%s та %s обмінялися "люб'язностями"!`, pair.A.DisplayName, pair.B.DisplayName)
	if winner != nil {
		msg += fmt.Sprintf("\n\nDana CockFight ставить на... %s! Але арена все вирішить.", winner.DisplayName)
	} else {
		msg += "\n\nХто переможе на арені? Дізнаємось незабаром!"
	}
	return msg
}

// FighterCaption is the /fighters photo caption.
func FighterCaption(f *fighter.Fighter) string {
	return f.DisplayName + "\n\n" + f.Description
}

// MatchIntroFallback replaces a generated match intro that failed.
func MatchIntroFallback(id pairing.PairID, pair pairing.Pair) string {
	return fmt.Sprintf("Dana CockFight: БІЙ %d обіцяє бути ЛЕГЕНДАРНИМ! %s проти %s - готуйтесь!",
		id.Number(), pair.A.DisplayName, pair.B.DisplayName)
}

// Truncate trims s to at most limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return strings.TrimRight(string(r[:limit-3]), " \n") + "..."
}
