package services

import (
	"fmt"
	"strings"

	"github.com/heartletter/letter_api/dto"
)

const (
	emotionSystemPrompt    = "You are an emotion detection expert. Only return hasEmotion: true if the text contains explicit Korean emotion words. Be very strict."
	blameSystemPrompt      = "당신은 따뜻하고 공감적인 심리 상담 전문가입니다. 자기 비난 패턴을 부드럽게 식별하고, \"~해보면 어떨까요?\" 같은 제안 톤으로 균형잡힌 관점을 제공합니다."
	summarySystemPrompt    = "당신은 텍스트 요약 전문가입니다. 주어진 텍스트의 핵심을 2-3단어로 간결하게 요약합니다."
	hintsSystemPrompt      = "당신은 사용자의 고민 정리를 돕는 전문가입니다. 하이라이트된 내용과 사용자 분석을 바탕으로 유용한 키워드를 생성합니다."
	categorizeSystemPrompt = "당신은 사용자의 강점을 기존 카테고리에 매칭하거나 새로운 카테고리를 생성하는 전문가입니다. 반드시 JSON 형식으로 응답해주세요."
	letterSystemPrompt     = "당신은 신경다양성을 가진 동물 캐릭터로서 비슷한 고민을 가진 사용자에게 도움을 요청하는 편지를 작성합니다. 강점 이름을 직접 언급하지 말고 행동으로만 표현하며, 편지 전체에서 하나의 캐릭터와 동물 세계 설정을 유지합니다."
	solutionsSystemPrompt  = "당신은 ADHD 전문 상담사이자 직장 적응 코치입니다. 실제 직장 환경에서 바로 적용할 수 있는 구체적이고 실용적인 해결 방향을 제시합니다."
	replySystemPrompt      = "당신은 따뜻하고 공감적인 사람으로서 진정성 있는 답장을 작성합니다."
)

func emotionPrompt(content string) string {
	return fmt.Sprintf(`Text to analyze: "%s"

Does this text contain explicit emotion words? Check if ANY of these emotion words are present:
Emotion words: 속상, 좌절, 불안, 화, 걱정, 실망, 부끄러, 당황, 우울, 스트레스, 분노, 슬픔, 죄책감
NOT emotion words: 집중, 피해, 실수, 어려움, 힘들, 효율, 문제, 막막

Example:
- "회사에서 집중을 못해서 남한테 피해를 줌" → hasEmotion: false
- "회사에서 집중을 못해서 스트레스를 받음" → hasEmotion: true

Response format (JSON):
{"hasEmotion": true/false, "suggestion": "suggestion text"}`, content)
}

func summaryPrompt(content string) string {
	return fmt.Sprintf(`고민 내용: "%s"

이 고민 내용을 2-3단어로 간단히 요약해주세요. 핵심 상황이나 문제를 나타내는 명사구 형태로 작성해주세요.
예시: "업무 집중 어려움", "동료와의 갈등", "자신감 부족"

JSON 형태로 응답해주세요:
{"summary": "요약 내용"}`, content)
}

func blamePrompt(letter, content string) string {
	return fmt.Sprintf(`편지 내용:
%s

사용자의 고민 정리:
%s

고민 정리에 자기 비난 패턴이 있는지 확인해주세요.
비난 패턴: "내가 못해서", "나 때문에" 같은 명시적 자기 비난, 환경 요인을 무시하고 개인의 결함에만 집중하는 서술,
"집중력이 약해서", "의지가 약해서"처럼 개인의 특성이나 신경발달적 특성을 결함으로 프레이밍하는 경우.
비난 패턴이 아닌 경우: 중립적인 사실 서술, 문제 인식, 환경 요인을 함께 언급하는 균형잡힌 시각.

패턴이 발견되면 편지 맥락에 맞는 구체적인 주변 요인을 3-5단어 키워드로 제안해주세요.
(예: "상사의 지시 스타일", "회의실 소음", "성과 위주 평가 시스템", "수면 부족")

JSON 형태로 응답해주세요:
{"hasBlamePattern": true/false, "warning": "부드러운 관점 확장 제안 (2-3문장)", "environmentalFactors": ["요인1", "요인2"]}`, letter, content)
}

func hintsPrompt(characterName string, items []dto.HighlightedData) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. 하이라이트된 텍스트: \"%s\"", i+1, item.Text)
		if item.ProblemReason != "" {
			fmt.Fprintf(&b, "\n   고민이라고 생각한 이유: %s", item.ProblemReason)
		}
		if item.UserExplanation != "" {
			fmt.Fprintf(&b, "\n   사용자 공감/경험: %s", item.UserExplanation)
		}
		if item.EmotionInference != "" {
			fmt.Fprintf(&b, "\n   유추한 감정: %s", item.EmotionInference)
		}
	}

	return fmt.Sprintf(`다음은 사용자가 %[1]s의 편지를 읽고 분석한 내용입니다:

%[2]s

위 분석 내용을 종합하여 %[1]s의 핵심 고민을 나타내는 짧은 키워드/구문을 5-7개 생성해주세요.
- "고민이라고 생각한 이유"를 우선적으로 반영
- 각 힌트는 8-12자의 짧은 구문
- %[1]s의 관점에서 표현

다음과 같은 형식으로 힌트만 반환해주세요:
"업무 집중 어려움"
"동료 눈치에 위축감"
"실수로 인한 자책감"`, characterName, b.String())
}

func categorizePrompt(general string) string {
	var b strings.Builder
	for i, s := range ndStrengths {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Name)
	}

	return fmt.Sprintf(`다음 사용자가 작성한 강점 텍스트를 분석해주세요:

**사용자 강점 텍스트:**
%s

**기존 강점 카테고리:**
%s
1. 위 카테고리 중 사용자 강점과 일치하는 것이 있다면 이름 그대로 선택
2. 기존 카테고리로 분류할 수 없는 독특한 강점이 있다면 새로운 카테고리명 생성 (이모지 없이)

**출력 형식 (JSON):**
{"existing": ["기존 카테고리1"], "new": ["새로운 카테고리1"]}`, general, b.String())
}

type letterPromptInput struct {
	CharacterName string
	Age           int
	Occupation    string
	Background    string
	Concern       string
	Difficulty    string
	Strengths     string
}

func letterPrompt(in letterPromptInput) string {
	return fmt.Sprintf(`당신은 신경다양성을 가진 동물 캐릭터입니다. 사용자의 고민을 비슷한 경험을 하는 동물 세계의 이야기로 각색하여, 사용자에게 조언과 도움을 요청하는 편지를 작성해주세요.

**캐릭터 정보:**
- 이름: %[1]s
- 나이: %[2]d세
- 직업: %[3]s
- 배경: %[4]s를 동물 세계와 캐릭터 직업에 맞게 각색

**주요 고민 상황:**
사용자 고민: "%[5]s"에서 "%[6]s"
→ 이를 %[3]s인 %[1]s의 동물 세계 상황으로 완전히 변환하여 각색

**편지에 포함할 강점들 (이름은 언급하지 말고 행동과 습관으로만 표현):**
%[7]s

**편지 구성 (7문단):**
1. 인사말과 자기소개
2. 동물 세계로 각색된 고민 상황 소개
3. 고민으로 인한 구체적 일상 어려움
4. 동물 무리나 가족 관계에 미치는 영향
5. 추가적인 어려움이나 감정적 상태
6. 절실한 도움 요청
7. 감사 인사와 정중한 마무리

인간 세계의 용어는 동물 세계 용어로 바꾸고 (예: "회사" → "숲속 작업장", "상사" → "족장"), 사용자가 자신의 이야기라고 알 수 없을 정도로 각색해주세요.
편지 내용만 반환해주세요. 문단은 ||로 구분해주세요.`,
		in.CharacterName, in.Age, in.Occupation, orDefault(in.Background, "평범한 동물 친구"),
		orDefault(in.Concern, "일반적인 고민"), orDefault(in.Difficulty, "구체적인 어려움"), in.Strengths)
}

func solutionsPrompt(req dto.GenerateSolutionsRequest, categories []string) string {
	var b strings.Builder
	for i, key := range categories {
		fmt.Fprintf(&b, "%d. %s\n", i+1, solutionCategories[key])
	}
	var example strings.Builder
	for i, key := range categories {
		if i > 0 {
			example.WriteString(",\n")
		}
		fmt.Fprintf(&example, `    {"category": "%s", "text": "제안"}`, key)
	}

	return fmt.Sprintf(`편지 작성자: %s (ADHD를 가진 직장인)
편지 내용: %s
사용자가 정리한 구체적 문제: %s
사용자의 개인 경험/반영: %s

위 맥락을 바탕으로 다음 카테고리에서 각각 1개씩 해결 방향을 생성해주세요:
%s
- "~하기" 형태의 간결한 행동 지향 키워드 (예: "타이머 활용하기", "체크리스트 만들기")
- 사용자가 자신만의 방법으로 확장할 수 있는 방향성

응답은 다음 JSON 형식으로 해주세요:
{
  "suggestions": [
%s
  ]
}`, req.CharacterName, req.LetterContent, req.ProblemContent, orDefault(req.PersonalReflection, "없음"), b.String(), example.String())
}

func replyPrompt(req dto.GenerateResponseLetterRequest) string {
	var problems strings.Builder
	n := 0
	for _, item := range req.ReflectionItems {
		solutions := make([]string, 0, len(item.SolutionInputs))
		for _, s := range item.SolutionInputs {
			if strings.TrimSpace(s.Content) != "" {
				solutions = append(solutions, s.Content)
			}
		}
		if strings.TrimSpace(item.Content) == "" || len(solutions) == 0 {
			continue
		}
		n++
		fmt.Fprintf(&problems, "%d. 고민: %s\n   해결책: %s\n", n, item.Content, strings.Join(solutions, ", "))
	}

	strengths := make([]string, 0, len(req.StrengthItems))
	for _, s := range req.StrengthItems {
		if s.Text != "" {
			strengths = append(strengths, s.Text)
		}
	}
	strengthText := "없음"
	if len(strengths) > 0 {
		strengthText = strings.Join(strengths, ", ")
	}

	return fmt.Sprintf(`어려움을 겪고 있는 편지 화자에게 진정성 있는 답장을 작성해주세요.

**편지 화자**: %[1]s
**답장 작성자 정보**: %[2]s
**답장 작성자의 강점들**: %[3]s

**원본 편지 내용**:
%[4]s

**작성자가 정리한 고민과 해결책들**:
%[5]s
다음 구조로 작성해주세요:
1. 친근한 자기소개 ("상담사", "전문가" 같은 용어 없이 일반인으로서)
2. 편지를 받은 소감
3. 고민별로 한 문단씩 공감과 작성자의 해결책을 바탕으로 한 조언
4. 격려와 마무리

"%[1]s"님께 직접 말하는 2인칭 단수 존댓말로 쓰고, 날짜나 서명은 포함하지 마세요.`,
		req.CharacterName, orDefault(req.UserIntroduction, "평범한 사람"), strengthText, req.OriginalLetter, problems.String())
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
