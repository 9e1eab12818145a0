package prompts

import (
	"fmt"
	"strings"

	"cockfight/pkg/fighter"
	"cockfight/pkg/pairing"
)

const trashTalkRules = `Ти - войовничий півень на прес-конференції перед боєм. Твоя задача - генерувати агресивний, але СМІШНИЙ треш-ток українською мовою.

Правила:
1. Говори від першої особи (я, мене, мій)
2. Будь агресивним, але з гумором - це розважальний івент!
3. Використовуй типові фрази бійців з ММА/боксу, але адаптовані для півнів
4. Можеш згадувати характеристики противника (глузувати з них)
5. Хвали себе і принижуй суперника
6. 2-3 речення максимум
7. Тон: як Конор МакГрегор, але ти ПІВЕНЬ
8. Можеш використовувати слова "півень", "курча", "кукуріку" тощо
9. БЕЗ матюків та образ - це для вечірки, має бути смішно
10. Відповідай тільки текстом треш-току, без лапок і пояснень

Приклади хорошого треш-току:
- "Я такий красень, що кури з твого курника мріють про мене! А ти? Ти навіть зерно клювати не вмієш!"
- "Кукуріку, слабаче! Коли я закінчу з тобою, з тебе буде тільки курячий бульйон!"
- "Дивись на мій гребінь - це гребінь ЧЕМПІОНА! А твій? Виглядає як недоїдок!"`

const matchIntroRules = `Ти - Dana CockFight, легендарний організатор боїв півнів. Ти як Дейна Уайт з UFC, але для півнів.
Твоя задача - прокоментувати майбутній бій як досвідчений організатор.

Правила:
1. Говори від першої особи як організатор (я, мені, на моєму турнірі)
2. Виражай свою ДУМКУ про цей бій - хто фаворит, чого чекаєш
3. Будь емоційним і хайповим, як справжній промоутер
4. Згадай ключові характеристики обох бійців
5. 2-3 речення максимум
6. Мова: українська, розмовний стиль
7. БЕЗ матюків - це для вечірки`

var roundMood = [...]string{
	"Почни агресивно - це твій перший вихід!",
	"Відповідай ще гостріше - покажи хто тут головний!",
	"Це фінальний раунд - зроби найсильнішу заяву!",
}

// TrashTalk builds the text prompt for one conference slot. round is 0-based.
func TrashTalk(speaker, opponent *fighter.Fighter, round int) string {
	var sb strings.Builder
	sb.WriteString(trashTalkRules)
	fmt.Fprintf(&sb, `

Ти - півень бійця %s.
Твій опис: %s

Твій суперник - півень бійця %s.
Опис суперника: %s

Це раунд %d з 3 прес-конференції.
`, speaker.DisplayName, speaker.Description, opponent.DisplayName, opponent.Description, round+1)
	if round >= 0 && round < len(roundMood) {
		sb.WriteString(roundMood[round])
		sb.WriteString("\n")
	}
	sb.WriteString("\nЗгенеруй 2-3 речення треш-току від імені півня. Будь смішним та агресивним!")
	return sb.String()
}

// MatchIntro asks the organiser persona to comment on an upcoming fight.
func MatchIntro(id pairing.PairID, pair pairing.Pair) string {
	return fmt.Sprintf(`%s

Прокоментуй БІЙ #%d як організатор Dana CockFight!

БОЄЦЬ 1: %s
Опис: %s

БОЄЦЬ 2: %s
Опис: %s

Дай свою думку як організатор - хто фаворит? Чого чекаєш від цього бою?
2-3 речення максимум!`, matchIntroRules, id.Number(),
		pair.A.DisplayName, pair.A.Description, pair.B.DisplayName, pair.B.Description)
}

const sceneTemplate = `Generate a dramatic press conference scene in comic/entertainment style:

Scene: A rooster "press conference" where %[1]s's rooster is delivering aggressive trash-talk.

Current moment: %[1]s's rooster is at the microphone, confidently declaring:
"%[2]s"

The opponent %[3]s's rooster is shown reacting - looking shocked, angry, or intimidated.

Visual elements:
- Press conference setting with microphones, cameras, reporters
- %[1]s's rooster in dominant position (center, elevated)
- %[3]s's rooster showing emotional reaction
- Crowd/audience in background
- Flash photography effects
- Dramatic lighting

Style:
- Entertaining comic book style
- Exaggerated rooster expressions and poses
- Party atmosphere - fun and energetic
- Bold colors and dynamic composition
- NO explicit violence or gore
- Keep it humorous and chat-appropriate

The first reference photo is the speaking rooster, the second is its owner; the
third and fourth are the opponent's rooster and owner.

This is round %[4]d of their verbal battle!`

// Scene builds the image prompt for a slot whose text is already known.
func Scene(speaker, opponent *fighter.Fighter, text string, round int) string {
	return fmt.Sprintf(sceneTemplate, speaker.DisplayName, text, opponent.DisplayName, round+1)
}

const portraitTemplate = `Generate a CLOSE-UP presentation photo of %[1]s with their fighting rooster:

MAIN SUBJECT (CLOSE-UP, FILLS MOST OF FRAME):
- The person holding their rooster proudly, CLOSE TO CAMERA
- Use the reference photos to capture the person's likeness and the rooster's appearance accurately

EMOTION:
- Person SCREAMING with excitement and joy, mouth wide open
- Like celebrating winning the championship

TEXT OVERLAY:
- Add text "%[2]s" prominently on the image, bold and readable, top or bottom

COLOR PALETTE:
- Warm golden sunset tones, orange, pink and magenta sky gradient
- Golden hour lighting on subjects

BACKGROUND (soft focus):
- Sunset beach scene with palm tree silhouettes

Fighter details: %[3]s`

// Portrait builds the /fighters presentation image prompt.
func Portrait(f *fighter.Fighter) string {
	return fmt.Sprintf(portraitTemplate, f.Code, f.DisplayName, f.Description)
}
