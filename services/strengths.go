package services

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/heartletter/letter_api/model"
)

type Strength struct {
	Name        string
	Description string
}

var ndStrengths = []Strength{
	{"💪 운동 능력자", "You are uniquely physically active or fit in ways that you attribute to your neurodivergence"},
	{"💡 창의력 폭발", "Your innovative approach to fostering ideas is a result of your neuroexceptional cognitive style"},
	{"❤️ 공감 천재", "You have a uniquely deep emotional understanding of others that you attribute to your neurodivergence"},
	{"🔍 매의 눈 디테일", "You recognize patterns or small details as a result of your neuroexceptional cognitive style"},
	{"🧠 정보 기억 능력자", "You are great at remembering particular types of information as a result of your neuroexceptional cognitive style"},
	{"🗺️ 머릿속 지도 앱", "You can quickly understand maps or visualize how things are arranged in physical space"},
	{"📡 마음 읽는 센서", "You have a uniquely strong awareness of how others might be feeling in interpersonal interactions"},
	{"🎯 초집중 모드 ON", "You can devote undivided attention to particular tasks for long periods at high efficiency"},
	{"📸 눈으로 찍는 사진 기억", "You can reliably recall information and detail after seeing it visually"},
	{"🔢 수학 천재", "You can quickly solve math problems and work with numbers in your head"},
	{"📋 원칙대로 FM", "You can consistently and reliably perform repetitive series of tasks"},
	{"🔄 생각 뒤집기 천재", "You quickly find innovative or unorthodox solutions that others may not think of"},
	{"🌟 인싸력 폭발! 인기쟁이", "You are a people person with very strong interpersonal skills"},
	{"🔥 포기란 없다! 끈기 대장!", "You have a high level of determination and perseverance on challenging tasks"},
	{"💻 컴퓨터/IT 마스터!", "You pick up and learn new technologies very quickly"},
	{"📚 책벌레 독서왕", "You quickly read and understand written material"},
	{"✍️ 술술 말솜씨", "You convey ideas in writing in an eloquent and engaging way"},
	{"💭 엉뚱 발상 해결사", "You approach problems from unusual angles and find indirect solutions others overlook"},
	{"📊 단계별 완벽 실행", "You naturally follow structured procedures so tasks are completed efficiently and accurately"},
	{"🚀 알아서 척척! 주도왕", "You independently begin and complete tasks without external prompting"},
	{"🎙️ 명쾌한 설명가", "You articulate complex ideas clearly so others grasp new concepts easily"},
	{"🤝 약속은 철저히! 믿음직맨", "You are dependable and follow through on commitments and responsibilities"},
	{"⏰ 기다림의 미학! 인내심 킹", "You stay calm and persistent in challenging or slow-paced situations"},
}

var animalCharacters = []string{
	"푸딩이", "마카롱", "츄츄", "뽀글이", "몰랑이", "꼬물이", "와플", "젤리",
	"쫀득이", "포롱이", "찹쌀이", "띠용이", "곰탱이", "솜뭉치", "까꿍이", "뽁뽁이",
	"말랑이", "폭신이", "토실이", "망고", "꿀떡이", "뚜뚜", "동글이", "통통이",
}

var animalOccupations = []string{
	"숲속 도서관 사서", "구름 연구원", "꽃밭 디자이너", "별빛 상담사",
	"바람 배달부", "나무 의사", "꿀벌 통역사", "새소리 음악가",
	"모래성 건축가", "물방울 과학자", "무지개 화가", "씨앗 재배사",
	"계절 안내원", "숲속 요리사", "돌멩이 수집가", "구름 조각가",
}

const (
	minLetterStrengths = 3
	maxLetterStrengths = 5

	defaultGeneralStrength = "💡 창의력 폭발"
	defaultSalutationName  = "친애하는 친구"
	letterClosing          = "읽어주셔서 감사합니다."
)

var strengthTagPattern = regexp.MustCompile(`\[([^\]]+)\]`)

func lookupStrength(name string) (Strength, bool) {
	for _, s := range ndStrengths {
		if s.Name == name {
			return s, true
		}
	}
	return Strength{}, false
}

// StrengthNames lists the catalogue in display order.
func StrengthNames() []string {
	names := make([]string, len(ndStrengths))
	for i, s := range ndStrengths {
		names[i] = s.Name
	}
	return names
}

// splitStrengthAnswer separates "general text [tag] content [tag] content".
// Only text before the first tag counts as general; tags without content are
// dropped.
func splitStrengthAnswer(answer string) (string, []model.TaggedStrength) {
	locs := strengthTagPattern.FindAllStringSubmatchIndex(answer, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(answer), nil
	}

	general := strings.TrimSpace(answer[:locs[0][0]])
	tagged := make([]model.TaggedStrength, 0, len(locs))
	for i, loc := range locs {
		tag := answer[loc[2]:loc[3]]
		end := len(answer)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		content := strings.TrimSpace(answer[loc[1]:end])
		if tag != "" && content != "" {
			tagged = append(tagged, model.TaggedStrength{Tag: tag, Content: content})
		}
	}
	return general, tagged
}

// selectStrengths picks the strengths woven into a letter: tag matches first,
// then categorized general text, topped up at random when fewer than three
// were found.
func selectStrengths(tagged []model.TaggedStrength, general *model.GeneralStrengths, rnd *rand.Rand) []model.SelectedStrength {
	selected := make([]model.SelectedStrength, 0, maxLetterStrengths)

	for _, t := range tagged {
		if s, ok := lookupStrength(t.Tag); ok {
			selected = append(selected, model.SelectedStrength{
				Name:        s.Name,
				Description: s.Description,
				UserContent: t.Content,
				Source:      model.StrengthSourceTagBased,
			})
		}
	}

	if general != nil {
		for _, name := range general.ExistingCategories {
			if s, ok := lookupStrength(name); ok {
				selected = append(selected, model.SelectedStrength{
					Name:        s.Name,
					Description: s.Description,
					UserContent: general.Content,
					Source:      model.StrengthSourceExistingCategory,
				})
			}
		}
		for _, name := range general.NewCategories {
			selected = append(selected, model.SelectedStrength{
				Name:        name,
				Description: general.Content,
				UserContent: general.Content,
				Source:      model.StrengthSourceNewCategory,
			})
		}
	}

	if len(selected) < minLetterStrengths {
		used := make(map[string]struct{}, len(selected))
		for _, s := range selected {
			used[s.Name] = struct{}{}
		}
		available := make([]Strength, 0, len(ndStrengths))
		for _, s := range ndStrengths {
			if _, ok := used[s.Name]; !ok {
				available = append(available, s)
			}
		}
		rnd.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
		needed := maxLetterStrengths - len(selected)
		if needed > len(available) {
			needed = len(available)
		}
		for _, s := range available[:needed] {
			selected = append(selected, model.SelectedStrength{
				Name:        s.Name,
				Description: s.Description,
				Source:      model.StrengthSourceRandom,
			})
		}
	}

	if len(selected) > maxLetterStrengths {
		selected = selected[:maxLetterStrengths]
	}
	return selected
}

func describeStrengths(selected []model.SelectedStrength) string {
	lines := make([]string, 0, len(selected))
	for _, s := range selected {
		switch s.Source {
		case model.StrengthSourceTagBased:
			lines = append(lines, fmt.Sprintf("- %s: %s (사용자가 태그로 선택하고 구체적으로 설명한 경험)", s.Name, s.UserContent))
		case model.StrengthSourceExistingCategory:
			lines = append(lines, fmt.Sprintf("- %s: %s (사용자 일반 강점에서 기존 카테고리로 분류됨)", s.Name, s.UserContent))
		case model.StrengthSourceNewCategory:
			lines = append(lines, fmt.Sprintf("- %s: %s (사용자 일반 강점에서 새로운 카테고리로 생성됨)", s.Name, s.UserContent))
		default:
			lines = append(lines, fmt.Sprintf("- %s: %s (시스템에서 랜덤으로 추가된 강점)", s.Name, s.Description))
		}
	}
	return strings.Join(lines, "\n")
}

// koreanLongDate formats like "2024년 5월 1일".
func koreanLongDate(t time.Time) string {
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}

// assembleLetter wraps the generated body, split on "||", with a salutation,
// a closing line and a dated signature.
func assembleLetter(nickname, characterName, body string, at time.Time) []string {
	if strings.TrimSpace(nickname) == "" {
		nickname = defaultSalutationName
	}

	paragraphs := []string{nickname + "님께,"}
	for _, p := range strings.Split(body, "||") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return append(paragraphs,
		letterClosing,
		fmt.Sprintf("%s  %s 드림", koreanLongDate(at), characterName),
	)
}
