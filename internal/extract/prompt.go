package extract

import "fmt"

const attributePromptTemplate = `Ты - виртуальный ассистент, специализирующийся на подборе автомобилей.
Твоя задача - извлечь характеристики автомобиля из описания.
Описание автомобиля: %s

Верни ТОЛЬКО JSON со следующими полями:
{
    "Количество_мест": число (от 2 до 9),
    "Привод": строка (передний/задний/полный),
    "Страна": строка,
    "Количество_дверей": число (от 2 до 7),
    "Тип_кузова": строка,
    "Тип_двигателя": строка (бензин/дизель/электричество/гибрид/газ),
    "Расход_топлива": число (от 3.0 до 30.0 л/100км),
    "Клиренс": число (от 100 до 400 мм),
    "Лошадиные_силы": число (от 50 до 2000),
    "Тип_коробки": строка (механическая/автоматическая/робот/вариатор),
    "Начало_выпуска": число (от 1990 до 2025),
    "Конец_выпуска": число (от 1990 до 2025)
}

Если какое-то значение не удалось определить, верни null для этого поля.
Убедись, что числовые значения действительно являются числами и находятся в указанных диапазонах.
Не добавляй никаких дополнительных пояснений или текста, только JSON.`

const summaryPromptTemplate = `Ты - виртуальный ассистент, специализирующийся на подборе автомобилей.
Твоя задача суммаризировать информацию о машине.
Информация о машине: %s

Ответь строго в формате:
Описание:
    <краткое описание модели в 3-4 предложениях>
Плюсы:
    <кратко опиши плюсы модели в 3-4 предложениях>
Минусы:
    <кратко опиши минусы модели в 3-4 предложениях>`

func attributePrompt(description string) string {
	return fmt.Sprintf(attributePromptTemplate, description)
}

func summaryPrompt(description string) string {
	return fmt.Sprintf(summaryPromptTemplate, description)
}
